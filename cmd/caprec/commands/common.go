package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/caprec/internal/core/catalog"
	"github.com/jinford/caprec/internal/core/indexing"
	"github.com/jinford/caprec/internal/core/recommend"
	gitinfra "github.com/jinford/caprec/internal/infra/git"
	"github.com/jinford/caprec/internal/infra/imagefs"
	openaiinfra "github.com/jinford/caprec/internal/infra/openai"
	"github.com/jinford/caprec/internal/infra/postgres"
	"github.com/jinford/caprec/internal/infra/tokenizer"
	"github.com/jinford/caprec/internal/platform/logger"
	"github.com/jinford/caprec/pkg/config"
	"github.com/jinford/caprec/pkg/db"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	Database *db.DB
	Embedder *openaiinfra.Embedder
	Loader   *imagefs.Loader
}

// NewAppContext は設定を読み込み、DBに接続して AppContext を作成する
func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	appCtx, err := NewAppContextWithoutDB(envFile)
	if err != nil {
		return nil, err
	}

	database, err := db.New(ctx, db.ConnectionParams{
		Host:     appCtx.Config.Database.Host,
		Port:     appCtx.Config.Database.Port,
		User:     appCtx.Config.Database.User,
		Password: appCtx.Config.Database.Password,
		DBName:   appCtx.Config.Database.DBName,
		SSLMode:  appCtx.Config.Database.SSLMode,
		MaxConns: appCtx.Config.Database.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	appCtx.Database = database
	return appCtx, nil
}

// NewAppContextWithoutDB はDB接続なしで AppContext を作成する
// アドホック推薦などデータベースを使わないコマンド用
func NewAppContextWithoutDB(envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	// セルフホストのエンドポイント利用時はAPIキーなしでも動作する
	if cfg.Embedding.APIKey == "" && cfg.Embedding.BaseURL == "" {
		return nil, openaiinfra.ErrAPIKeyNotSet
	}

	embedderOpts := []openaiinfra.EmbedderOption{
		openaiinfra.WithEmbeddingModel(cfg.Embedding.Model),
		openaiinfra.WithEmbeddingDimension(cfg.Embedding.Dimension),
	}
	if cfg.Embedding.BaseURL != "" {
		embedderOpts = append(embedderOpts, openaiinfra.WithBaseURL(cfg.Embedding.BaseURL))
	}
	embedder := openaiinfra.NewEmbedder(cfg.Embedding.APIKey, embedderOpts...)

	return &AppContext{
		Config:   cfg,
		Logger:   appLogger,
		Embedder: embedder,
		Loader:   imagefs.NewLoader(cfg.ImageMaxBytes),
	}, nil
}

// Close はAppContextが保持するリソースをクリーンアップする
func (ac *AppContext) Close() {
	if ac.Database != nil {
		ac.Database.Close()
	}
}

// CatalogService はカタログ管理サービスを組み立てる
func (ac *AppContext) CatalogService() (*catalog.Service, error) {
	counter, err := tokenizer.NewCounter()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token counter: %w", err)
	}

	repo := postgres.NewCatalogRepository(ac.Database.Pool)
	return catalog.NewService(repo, counter, catalog.WithLogger(ac.Logger)), nil
}

// IndexingService はEmbedding生成サービスを組み立てる
func (ac *AppContext) IndexingService() *indexing.Service {
	repo := postgres.NewIndexingRepository(ac.Database.Pool)
	return indexing.NewService(repo, ac.Embedder, indexing.WithLogger(ac.Logger))
}

// RecommendService は推薦サービスを組み立てる
// DB未接続の場合はアドホック推薦のみ利用可能
func (ac *AppContext) RecommendService() *recommend.Service {
	var repo recommend.Repository
	if ac.Database != nil {
		repo = postgres.NewSearchRepository(ac.Database.Pool, ac.Embedder.ModelName())
	}
	return recommend.NewService(repo, ac.Embedder, recommend.WithLogger(ac.Logger))
}

// GitClient はGitクライアントを組み立てる
func (ac *AppContext) GitClient() *gitinfra.Client {
	return gitinfra.NewClient(ac.Config.Git.SSHKeyPath, ac.Config.Git.SSHPassword)
}
