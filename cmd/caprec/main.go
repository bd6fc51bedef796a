package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/caprec/cmd/caprec/commands"
	"github.com/jinford/caprec/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定（コマンド実行時に設定値で上書きされる）
	logger.New(logger.DefaultConfig())

	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}

	app := &cli.Command{
		Name:  "caprec",
		Usage: "画像に対するキャプション推薦システム（Embedding検索ベース）",
		Commands: []*cli.Command{
			{
				Name:  "catalog",
				Usage: "キャプションカタログ管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "create",
						Usage: "カタログを作成",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "name",
								Usage:    "カタログ名",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "カタログの説明",
							},
						},
						Action: commands.CatalogCreateAction,
					},
					{
						Name:  "list",
						Usage: "カタログ一覧を表示",
						Flags: []cli.Flag{
							envFlag,
						},
						Action: commands.CatalogListAction,
					},
					{
						Name:  "show",
						Usage: "カタログ配下のキャプションを表示",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "name",
								Usage:    "カタログ名",
								Required: true,
							},
						},
						Action: commands.CatalogShowAction,
					},
					{
						Name:  "delete",
						Usage: "カタログを削除",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "name",
								Usage:    "カタログ名",
								Required: true,
							},
						},
						Action: commands.CatalogDeleteAction,
					},
					{
						Name:  "import",
						Usage: "キャプションを取り込み（1行1キャプション形式）",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "name",
								Usage:    "カタログ名（存在しない場合は自動作成）",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "file",
								Usage: "キャプションファイルパス",
							},
							&cli.StringFlag{
								Name:  "dir",
								Usage: "キャプションファイルを含むディレクトリ",
							},
							&cli.StringFlag{
								Name:  "git-url",
								Usage: "キャプションデータセットのGitリポジトリURL",
							},
							&cli.StringFlag{
								Name:  "ref",
								Usage: "ブランチ名またはタグ名（--git-url 指定時のみ有効）",
							},
						},
						Action: commands.CatalogImportAction,
					},
				},
			},
			{
				Name:  "index",
				Usage: "Embedding生成コマンド",
				Commands: []*cli.Command{
					{
						Name:  "run",
						Usage: "カタログのキャプションEmbeddingを生成",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "catalog",
								Usage:    "カタログ名",
								Required: true,
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "生成済みEmbeddingも再生成する",
							},
						},
						Action: commands.IndexRunAction,
					},
				},
			},
			{
				Name:  "recommend",
				Usage: "キャプション推薦コマンド",
				Commands: []*cli.Command{
					{
						Name:  "image",
						Usage: "画像1枚に合うキャプション上位k件を表示",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "image",
								Usage:    "画像ファイルパス",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "catalog",
								Usage: "検索対象のカタログ名",
							},
							&cli.StringFlag{
								Name:  "captions-file",
								Usage: "候補キャプションファイル（DBを使わないアドホック推薦）",
							},
							&cli.IntFlag{
								Name:  "top",
								Usage: "表示する件数",
								Value: 5,
							},
						},
						Action: commands.RecommendImageAction,
					},
					{
						Name:  "batch",
						Usage: "ディレクトリ内の全画像に対して一括推薦",
						Flags: []cli.Flag{
							envFlag,
							&cli.StringFlag{
								Name:     "dir",
								Usage:    "画像ディレクトリ",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "catalog",
								Usage:    "検索対象のカタログ名",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "top",
								Usage: "画像ごとの推薦件数",
								Value: 5,
							},
							&cli.StringFlag{
								Name:  "out",
								Usage: "JSON出力ファイルパス（省略時は標準出力）",
							},
						},
						Action: commands.RecommendBatchAction,
					},
				},
			},
			{
				Name:  "db",
				Usage: "データベース管理コマンド",
				Commands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "スキーマを適用",
						Flags:  []cli.Flag{envFlag},
						Action: commands.DBInitAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
