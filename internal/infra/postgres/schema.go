package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema はcaprecのデータベーススキーマ定義
// pgvector拡張が必要（CREATE EXTENSION vector）
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS catalogs (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name        TEXT NOT NULL UNIQUE,
    description TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS captions (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    catalog_id   UUID NOT NULL REFERENCES catalogs(id) ON DELETE CASCADE,
    text         TEXT NOT NULL,
    token_count  INTEGER NOT NULL DEFAULT 0,
    content_hash TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (catalog_id, content_hash)
);

CREATE TABLE IF NOT EXISTS caption_embeddings (
    caption_id UUID NOT NULL REFERENCES captions(id) ON DELETE CASCADE,
    model      TEXT NOT NULL,
    dimension  INTEGER NOT NULL,
    embedding  vector NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (caption_id, model)
);

CREATE INDEX IF NOT EXISTS idx_captions_catalog_id ON captions(catalog_id);
`

// Migrate はスキーマを適用する
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
