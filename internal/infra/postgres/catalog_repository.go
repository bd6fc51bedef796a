package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jinford/caprec/internal/core/catalog"
)

// CatalogRepository は catalog.Repository を実装する PostgreSQL リポジトリ
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository は新しい CatalogRepository を作成する
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

var _ catalog.Repository = (*CatalogRepository)(nil)

// CreateIfNotExists は名前でカタログを検索し、存在しなければ作成する（冪等）
func (r *CatalogRepository) CreateIfNotExists(ctx context.Context, name string, description *string) (*catalog.Catalog, error) {
	query := `
		INSERT INTO catalogs (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			description = COALESCE(EXCLUDED.description, catalogs.description),
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, name, description, created_at, updated_at
	`

	var cat catalog.Catalog
	err := r.pool.QueryRow(ctx, query, name, description).Scan(
		&cat.ID,
		&cat.Name,
		&cat.Description,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	return &cat, nil
}

// GetByName は名前でカタログを取得する
func (r *CatalogRepository) GetByName(ctx context.Context, name string) (*catalog.Catalog, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM catalogs
		WHERE name = $1
	`

	var cat catalog.Catalog
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&cat.ID,
		&cat.Name,
		&cat.Description,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrCatalogNotFound, name)
		}
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	return &cat, nil
}

// ListWithStats は全カタログを統計情報付きで取得する
func (r *CatalogRepository) ListWithStats(ctx context.Context) ([]*catalog.CatalogStats, error) {
	query := `
		SELECT
			c.id, c.name, c.description, c.created_at, c.updated_at,
			COUNT(DISTINCT cap.id) AS caption_count,
			COUNT(DISTINCT ce.caption_id) AS indexed_count,
			MAX(ce.created_at) AS last_indexed_at
		FROM catalogs c
		LEFT JOIN captions cap ON cap.catalog_id = c.id
		LEFT JOIN caption_embeddings ce ON ce.caption_id = cap.id
		GROUP BY c.id
		ORDER BY c.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}
	defer rows.Close()

	var stats []*catalog.CatalogStats
	for rows.Next() {
		var s catalog.CatalogStats
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Description,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.CaptionCount,
			&s.IndexedCount,
			&s.LastIndexedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog stats: %w", err)
		}
		stats = append(stats, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalogs: %w", err)
	}

	return stats, nil
}

// Delete はカタログを削除する（キャプション・EmbeddingはCASCADEで削除される）
func (r *CatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM catalogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete catalog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrCatalogNotFound, id)
	}
	return nil
}

// CreateCaptions はキャプションを一括作成する
// (catalog_id, content_hash) が重複する行はスキップする
func (r *CatalogRepository) CreateCaptions(ctx context.Context, catalogID uuid.UUID, captions []*catalog.Caption) (int, error) {
	if len(captions) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO captions (catalog_id, text, token_count, content_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (catalog_id, content_hash) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, c := range captions {
		batch.Queue(query, catalogID, c.Text, c.TokenCount, c.ContentHash)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range captions {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert caption: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ListCaptions はカタログ配下のキャプション一覧を取得する
func (r *CatalogRepository) ListCaptions(ctx context.Context, catalogID uuid.UUID) ([]*catalog.Caption, error) {
	query := `
		SELECT id, catalog_id, text, token_count, content_hash, created_at
		FROM captions
		WHERE catalog_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, catalogID)
	if err != nil {
		return nil, fmt.Errorf("failed to list captions: %w", err)
	}
	defer rows.Close()

	var captions []*catalog.Caption
	for rows.Next() {
		var c catalog.Caption
		if err := rows.Scan(
			&c.ID,
			&c.CatalogID,
			&c.Text,
			&c.TokenCount,
			&c.ContentHash,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan caption: %w", err)
		}
		captions = append(captions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate captions: %w", err)
	}

	return captions, nil
}
