package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jinford/caprec/internal/core/catalog"
	gitinfra "github.com/jinford/caprec/internal/infra/git"
	"github.com/jinford/caprec/internal/infra/imagefs"
)

// CatalogCreateAction はカタログを作成するコマンドのアクション
func CatalogCreateAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	description := cmd.String("description")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	svc, err := appCtx.CatalogService()
	if err != nil {
		return err
	}

	var descPtr *string
	if description != "" {
		descPtr = &description
	}

	cat, err := svc.Create(ctx, name, descPtr)
	if err != nil {
		return err
	}

	fmt.Printf("catalog %q created (id: %s)\n", cat.Name, cat.ID)
	return nil
}

// CatalogListAction はカタログ一覧を表示するコマンドのアクション
func CatalogListAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	svc, err := appCtx.CatalogService()
	if err != nil {
		return err
	}

	stats, err := svc.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCAPTIONS\tINDEXED\tLAST INDEXED")
	for _, s := range stats {
		lastIndexed := "-"
		if s.LastIndexedAt != nil {
			lastIndexed = s.LastIndexedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Name, s.CaptionCount, s.IndexedCount, lastIndexed)
	}
	return w.Flush()
}

// CatalogShowAction はカタログ配下のキャプション一覧を表示するコマンドのアクション
func CatalogShowAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	svc, err := appCtx.CatalogService()
	if err != nil {
		return err
	}

	captions, err := svc.ListCaptions(ctx, name)
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogNotFound) {
			return fmt.Errorf("catalog %q does not exist", name)
		}
		return err
	}

	for _, c := range captions {
		fmt.Printf("%s\t%s\n", c.ID, c.Text)
	}
	fmt.Printf("total: %d captions\n", len(captions))
	return nil
}

// CatalogDeleteAction はカタログを削除するコマンドのアクション
func CatalogDeleteAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	svc, err := appCtx.CatalogService()
	if err != nil {
		return err
	}

	if err := svc.Delete(ctx, name); err != nil {
		return err
	}

	fmt.Printf("catalog %q deleted\n", name)
	return nil
}

// CatalogImportAction はキャプションを取り込むコマンドのアクション
// --file / --dir / --git-url のいずれか1つを指定する
func CatalogImportAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	filePath := cmd.String("file")
	dirPath := cmd.String("dir")
	gitURL := cmd.String("git-url")

	specified := 0
	for _, v := range []string{filePath, dirPath, gitURL} {
		if v != "" {
			specified++
		}
	}
	if specified != 1 {
		return fmt.Errorf("exactly one of --file, --dir, --git-url must be specified")
	}

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	svc, err := appCtx.CatalogService()
	if err != nil {
		return err
	}

	var source catalog.CaptionSource
	switch {
	case filePath != "":
		source = imagefs.NewFileSource(filePath)
	case dirPath != "":
		source = imagefs.NewDirSource(dirPath)
	case gitURL != "":
		ref := cmd.String("ref")
		if ref == "" {
			ref = appCtx.Config.Git.DefaultBranch
		}
		source = gitinfra.NewCaptionSource(appCtx.GitClient(), appCtx.Config.Git.CloneDir, gitURL, ref)
	}

	result, err := svc.Import(ctx, name, source)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d captions (%d duplicates, %d rejected) in %s\n",
		result.Imported, result.Duplicates, result.Rejected, result.Duration.Round(time.Millisecond))
	return nil
}
