package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/caprec/internal/core/recommend"
)

// SearchRepository は recommend.Repository を実装する PostgreSQL リポジトリ
// pgvectorのコサイン距離演算子（<=>）による全件走査で検索する
type SearchRepository struct {
	pool  *pgxpool.Pool
	model string
}

// NewSearchRepository は新しい SearchRepository を作成する
// model は検索対象とするEmbeddingモデル名
func NewSearchRepository(pool *pgxpool.Pool, model string) *SearchRepository {
	return &SearchRepository{pool: pool, model: model}
}

var _ recommend.Repository = (*SearchRepository)(nil)

// SearchByCatalog はカタログ内でクエリベクトルに近いキャプションを検索する
func (r *SearchRepository) SearchByCatalog(ctx context.Context, catalogID uuid.UUID, queryVector []float32, limit int) ([]*recommend.SearchResult, error) {
	query := `
		SELECT
			c.id,
			c.text,
			1 - (ce.embedding <=> $2) AS score
		FROM captions c
		JOIN caption_embeddings ce ON ce.caption_id = c.id
		WHERE c.catalog_id = $1 AND ce.model = $3
		ORDER BY ce.embedding <=> $2
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query, catalogID, pgvector.NewVector(queryVector), r.model, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search captions: %w", err)
	}
	defer rows.Close()

	var results []*recommend.SearchResult
	for rows.Next() {
		var res recommend.SearchResult
		if err := rows.Scan(&res.CaptionID, &res.Caption, &res.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}

	return results, nil
}
