package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jinford/caprec/internal/core/recommend"
	"github.com/jinford/caprec/internal/infra/imagefs"
)

// RecommendImageAction は画像1枚に対するキャプション推薦コマンドのアクション
// --catalog 指定時はDB検索、--captions-file 指定時はアドホック推薦を実行する
func RecommendImageAction(ctx context.Context, cmd *cli.Command) error {
	imagePath := cmd.String("image")
	catalogName := cmd.String("catalog")
	captionsFile := cmd.String("captions-file")
	topK := int(cmd.Int("top"))

	if (catalogName == "") == (captionsFile == "") {
		return fmt.Errorf("exactly one of --catalog, --captions-file must be specified")
	}

	// アドホック推薦はDB接続不要
	var (
		appCtx *AppContext
		err    error
	)
	if catalogName != "" {
		appCtx, err = NewAppContext(ctx, cmd.String("env"))
	} else {
		appCtx, err = NewAppContextWithoutDB(cmd.String("env"))
	}
	if err != nil {
		return err
	}
	defer appCtx.Close()

	image, err := appCtx.Loader.LoadImage(imagePath)
	if err != nil {
		return err
	}

	svc := appCtx.RecommendService()

	var recs []recommend.Recommendation
	if catalogName != "" {
		catalogSvc, err := appCtx.CatalogService()
		if err != nil {
			return err
		}
		cat, err := catalogSvc.Get(ctx, catalogName)
		if err != nil {
			return err
		}

		recs, err = svc.Recommend(ctx, recommend.RecommendParams{
			CatalogID: cat.ID,
			Image:     image,
			TopK:      topK,
		})
		if err != nil {
			return err
		}
	} else {
		captions, err := imagefs.NewFileSource(captionsFile).ReadCaptions(ctx)
		if err != nil {
			return err
		}

		recs, err = svc.RecommendAdhoc(ctx, recommend.AdhocParams{
			Image:    image,
			Captions: captions,
			TopK:     topK,
		})
		if err != nil {
			return err
		}
	}

	for _, r := range recs {
		fmt.Printf("%2d. [%.4f] %s\n", r.Rank, r.Score, r.Caption)
	}
	return nil
}

// RecommendBatchAction はディレクトリ内の全画像に対する一括推薦コマンドのアクション
func RecommendBatchAction(ctx context.Context, cmd *cli.Command) error {
	dirPath := cmd.String("dir")
	catalogName := cmd.String("catalog")
	topK := int(cmd.Int("top"))
	outPath := cmd.String("out")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	catalogSvc, err := appCtx.CatalogService()
	if err != nil {
		return err
	}
	cat, err := catalogSvc.Get(ctx, catalogName)
	if err != nil {
		return err
	}

	scanner, err := imagefs.NewScanner(dirPath)
	if err != nil {
		return err
	}
	imagePaths, err := scanner.ScanImages(dirPath)
	if err != nil {
		return err
	}
	if len(imagePaths) == 0 {
		return fmt.Errorf("no images found in %s", dirPath)
	}

	svc := appCtx.RecommendService()

	var results []recommend.BatchResult
	for _, path := range imagePaths {
		image, err := appCtx.Loader.LoadImage(path)
		if err != nil {
			appCtx.Logger.Warn("failed to load image, skipped", "path", path, "error", err)
			continue
		}

		recs, err := svc.Recommend(ctx, recommend.RecommendParams{
			CatalogID: cat.ID,
			Image:     image,
			TopK:      topK,
		})
		if err != nil {
			return fmt.Errorf("recommendation failed for %s: %w", path, err)
		}

		results = append(results, recommend.BatchResult{
			ImagePath:       path,
			Recommendations: recs,
		})
	}

	if outPath != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		fmt.Printf("wrote %d results to %s\n", len(results), outPath)
		return nil
	}

	for _, res := range results {
		fmt.Printf("%s\n", res.ImagePath)
		for _, r := range res.Recommendations {
			fmt.Printf("  %2d. [%.4f] %s\n", r.Rank, r.Score, r.Caption)
		}
	}
	return nil
}
