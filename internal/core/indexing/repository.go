package indexing

import (
	"context"

	"github.com/google/uuid"
)

// Repository はEmbedding生成に必要なデータアクセスを提供するインターフェース
type Repository interface {
	// ListPendingCaptions は指定モデルのEmbeddingが未生成のキャプションを取得する
	ListPendingCaptions(ctx context.Context, catalogID uuid.UUID, model string) ([]*PendingCaption, error)

	// ListAllCaptions はカタログ配下の全キャプションを取得する（--force 用）
	ListAllCaptions(ctx context.Context, catalogID uuid.UUID) ([]*PendingCaption, error)

	// UpsertEmbeddings はキャプションEmbeddingを一括UPSERTする
	UpsertEmbeddings(ctx context.Context, embeddings []*CaptionEmbedding) error

	// CountEmbeddings は指定モデルの生成済みEmbedding件数を返す
	CountEmbeddings(ctx context.Context, catalogID uuid.UUID, model string) (int, error)
}
