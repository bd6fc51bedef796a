package recommend

import (
	"context"

	"github.com/google/uuid"
)

// SearchResult はベクトル検索1件分の結果を表す
type SearchResult struct {
	CaptionID uuid.UUID
	Caption   string
	Score     float64
}

// Repository は推薦に必要なデータアクセスを提供するインターフェース
type Repository interface {
	// SearchByCatalog はカタログ内でクエリベクトルに近いキャプションを検索する
	// Score はコサイン類似度（1 - コサイン距離）で降順に並ぶ
	SearchByCatalog(ctx context.Context, catalogID uuid.UUID, queryVector []float32, limit int) ([]*SearchResult, error)
}
