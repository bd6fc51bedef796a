package indexing

import (
	"time"

	"github.com/google/uuid"
)

// PendingCaption はEmbedding未生成のキャプションを表す
type PendingCaption struct {
	ID   uuid.UUID
	Text string
}

// CaptionEmbedding はキャプションに対するEmbeddingベクトルを表す
type CaptionEmbedding struct {
	CaptionID uuid.UUID `json:"captionID"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"createdAt"`
}

// IndexParams はEmbedding生成処理のパラメータを表す
type IndexParams struct {
	CatalogID uuid.UUID
	// Force が真の場合、生成済みのEmbeddingも再生成する
	Force bool
}

// IndexResult はEmbedding生成処理の結果を表す
type IndexResult struct {
	Embedded int           `json:"embedded"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}
