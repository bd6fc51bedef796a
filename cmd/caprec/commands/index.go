package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jinford/caprec/internal/core/indexing"
	"github.com/jinford/caprec/internal/infra/postgres"
	"github.com/jinford/caprec/pkg/lock"
)

// IndexRunAction はカタログのキャプションEmbeddingを生成するコマンドのアクション
func IndexRunAction(ctx context.Context, cmd *cli.Command) error {
	catalogName := cmd.String("catalog")
	force := cmd.Bool("force")

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

	// 同一カタログに対する並行実行を防ぐ
	lockID := lock.GenerateLockID("index", cat.ID.String())
	advisoryLock, err := lock.Acquire(ctx, appCtx.Database.Pool, lockID)
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return fmt.Errorf("indexing is already running for catalog %q", catalogName)
		}
		return err
	}
	defer advisoryLock.Release(ctx)

	result, err := appCtx.IndexingService().Run(ctx, indexing.IndexParams{
		CatalogID: cat.ID,
		Force:     force,
	})
	if err != nil {
		return err
	}

	fmt.Printf("embedded %d captions in %s (model: %s)\n",
		result.Embedded, result.Duration.Round(time.Millisecond), appCtx.Embedder.ModelName())
	return nil
}

// DBInitAction はデータベーススキーマを適用するコマンドのアクション
func DBInitAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := postgres.Migrate(ctx, appCtx.Database.Pool); err != nil {
		return err
	}

	fmt.Println("database schema applied")
	return nil
}
