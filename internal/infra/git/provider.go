package git

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jinford/caprec/internal/core/catalog"
	"github.com/jinford/caprec/internal/infra/imagefs"
)

// CaptionSource は Git リポジトリをキャプション取り込み元として扱う
// クローン済みワークツリーを DirSource に委譲して読み込む
type CaptionSource struct {
	client       *Client
	cloneBaseDir string
	url          string
	ref          string
}

// NewCaptionSource は新しい CaptionSource を作成する
func NewCaptionSource(client *Client, cloneBaseDir, url, ref string) *CaptionSource {
	return &CaptionSource{
		client:       client,
		cloneBaseDir: cloneBaseDir,
		url:          url,
		ref:          ref,
	}
}

var _ catalog.CaptionSource = (*CaptionSource)(nil)

// ReadCaptions はリポジトリをクローン（または最新化）してキャプション一覧を読み込む
func (s *CaptionSource) ReadCaptions(ctx context.Context) ([]string, error) {
	dirName, err := s.client.URLToDirectoryName(s.url)
	if err != nil {
		return nil, err
	}
	repoDir := filepath.Join(s.cloneBaseDir, dirName)

	if err := s.client.CloneOrPull(ctx, s.url, repoDir, s.ref); err != nil {
		return nil, fmt.Errorf("failed to prepare repository: %w", err)
	}

	if info, err := s.client.GetCommitInfo(ctx, repoDir, s.ref); err == nil {
		slog.Info("caption dataset ready",
			"url", s.url,
			"ref", s.ref,
			"commit", info.Hash,
			"date", info.Date,
		)
	}

	return imagefs.NewDirSource(repoDir).ReadCaptions(ctx)
}
