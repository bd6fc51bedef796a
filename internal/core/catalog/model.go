package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Catalog はキャプションカタログ（推薦候補の固定リスト）を表す
type Catalog struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Caption はカタログに属するキャプション1件を表す
type Caption struct {
	ID          uuid.UUID `json:"id"`
	CatalogID   uuid.UUID `json:"catalogID"`
	Text        string    `json:"text"`
	TokenCount  int       `json:"tokenCount"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CatalogStats はカタログの統計情報を表す
type CatalogStats struct {
	Catalog
	CaptionCount  int        `json:"captionCount"`
	IndexedCount  int        `json:"indexedCount"`
	LastIndexedAt *time.Time `json:"lastIndexedAt,omitempty"`
}

// ImportResult はキャプション取り込みの結果を表す
type ImportResult struct {
	Imported   int           `json:"imported"`
	Duplicates int           `json:"duplicates"`
	Rejected   int           `json:"rejected"`
	Duration   time.Duration `json:"duration"`
}
