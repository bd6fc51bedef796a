package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCatalogNotFound はカタログが存在しない場合のエラー
var ErrCatalogNotFound = errors.New("catalog not found")

// Repository はカタログ集約のデータアクセスを提供するインターフェース
type Repository interface {
	// CreateIfNotExists は名前でカタログを検索し、存在しなければ作成する（冪等）
	CreateIfNotExists(ctx context.Context, name string, description *string) (*Catalog, error)

	// GetByName は名前でカタログを取得する
	GetByName(ctx context.Context, name string) (*Catalog, error)

	// ListWithStats は全カタログを統計情報付きで取得する
	ListWithStats(ctx context.Context) ([]*CatalogStats, error)

	// Delete はカタログと配下のキャプション・Embeddingを削除する
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateCaptions はキャプションを一括作成する
	// content_hash が重複する行はスキップし、作成できた件数を返す
	CreateCaptions(ctx context.Context, catalogID uuid.UUID, captions []*Caption) (int, error)

	// ListCaptions はカタログ配下のキャプション一覧を取得する
	ListCaptions(ctx context.Context, catalogID uuid.UUID) ([]*Caption, error)
}
