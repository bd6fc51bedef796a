package recommend

import (
	"github.com/google/uuid"
)

// Recommendation はキャプション1件の推薦結果を表す
type Recommendation struct {
	CaptionID uuid.UUID `json:"captionID,omitempty"`
	Caption   string    `json:"caption"`
	Score     float64   `json:"score"`
	Rank      int       `json:"rank"`
}

// ImageInput は推薦対象の画像を表す
type ImageInput struct {
	// Path は元ファイルのパス（表示用）
	Path string
	// Data は画像のバイト列
	Data []byte
	// MIMEType は image/png などのMIMEタイプ
	MIMEType string
}

// RecommendParams はカタログ検索による推薦パラメータを表す
type RecommendParams struct {
	CatalogID uuid.UUID
	Image     ImageInput
	TopK      int
}

// AdhocParams はアドホック推薦（その場でキャプションを埋め込む）のパラメータを表す
type AdhocParams struct {
	Image    ImageInput
	Captions []string
	TopK     int
}

// BatchResult は画像1件分のバッチ推薦結果を表す
type BatchResult struct {
	ImagePath       string           `json:"imagePath"`
	Recommendations []Recommendation `json:"recommendations"`
}
