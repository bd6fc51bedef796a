package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/caprec/internal/core/indexing"
)

// IndexingRepository は indexing.Repository を実装する PostgreSQL リポジトリ
type IndexingRepository struct {
	pool *pgxpool.Pool
}

// NewIndexingRepository は新しい IndexingRepository を作成する
func NewIndexingRepository(pool *pgxpool.Pool) *IndexingRepository {
	return &IndexingRepository{pool: pool}
}

var _ indexing.Repository = (*IndexingRepository)(nil)

// ListPendingCaptions は指定モデルのEmbeddingが未生成のキャプションを取得する
func (r *IndexingRepository) ListPendingCaptions(ctx context.Context, catalogID uuid.UUID, model string) ([]*indexing.PendingCaption, error) {
	query := `
		SELECT c.id, c.text
		FROM captions c
		LEFT JOIN caption_embeddings ce
			ON ce.caption_id = c.id AND ce.model = $2
		WHERE c.catalog_id = $1 AND ce.caption_id IS NULL
		ORDER BY c.created_at, c.id
	`

	rows, err := r.pool.Query(ctx, query, catalogID, model)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending captions: %w", err)
	}
	defer rows.Close()

	return scanPendingCaptions(rows)
}

// ListAllCaptions はカタログ配下の全キャプションを取得する
func (r *IndexingRepository) ListAllCaptions(ctx context.Context, catalogID uuid.UUID) ([]*indexing.PendingCaption, error) {
	query := `
		SELECT id, text
		FROM captions
		WHERE catalog_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, catalogID)
	if err != nil {
		return nil, fmt.Errorf("failed to list captions: %w", err)
	}
	defer rows.Close()

	return scanPendingCaptions(rows)
}

func scanPendingCaptions(rows pgx.Rows) ([]*indexing.PendingCaption, error) {
	var captions []*indexing.PendingCaption
	for rows.Next() {
		var c indexing.PendingCaption
		if err := rows.Scan(&c.ID, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan caption: %w", err)
		}
		captions = append(captions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate captions: %w", err)
	}
	return captions, nil
}

// UpsertEmbeddings はキャプションEmbeddingを一括UPSERTする（冪等性保証）
func (r *IndexingRepository) UpsertEmbeddings(ctx context.Context, embeddings []*indexing.CaptionEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	query := `
		INSERT INTO caption_embeddings (caption_id, model, dimension, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (caption_id, model) DO UPDATE SET
			dimension = EXCLUDED.dimension,
			embedding = EXCLUDED.embedding,
			created_at = CURRENT_TIMESTAMP
	`

	batch := &pgx.Batch{}
	for _, e := range embeddings {
		batch.Queue(query, e.CaptionID, e.Model, e.Dimension, pgvector.NewVector(e.Vector))
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range embeddings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert embedding: %w", err)
		}
	}

	return nil
}

// CountEmbeddings は指定モデルの生成済みEmbedding件数を返す
func (r *IndexingRepository) CountEmbeddings(ctx context.Context, catalogID uuid.UUID, model string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM caption_embeddings ce
		JOIN captions c ON c.id = ce.caption_id
		WHERE c.catalog_id = $1 AND ce.model = $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, catalogID, model).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}

	return count, nil
}
