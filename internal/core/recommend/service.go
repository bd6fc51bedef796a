package recommend

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultTopK はTopK未指定時のデフォルト件数
const DefaultTopK = 5

// Embedder は画像とテキストのEmbedding生成インターフェース
type Embedder interface {
	// EmbedImage は画像1件のEmbeddingを生成する
	EmbedImage(ctx context.Context, data []byte, mimeType string) ([]float32, error)
	// BatchEmbed はテキストをバッチでEmbeddingに変換する
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
	// MaxBatchSize は1リクエストで処理できる最大件数を返す
	MaxBatchSize() int
}

// Service は画像に対するキャプション推薦のユースケースを提供する
type Service struct {
	repo     Repository
	embedder Embedder
	logger   *slog.Logger
}

type serviceOptions struct {
	logger *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService は新しい Service を作成する
func NewService(repo Repository, embedder Embedder, opts ...ServiceOption) *Service {
	options := serviceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		repo:     repo,
		embedder: embedder,
		logger:   options.logger,
	}
}

// Recommend はカタログに登録済みのキャプションから画像に合う上位k件を返す
func (s *Service) Recommend(ctx context.Context, params RecommendParams) ([]Recommendation, error) {
	if len(params.Image.Data) == 0 {
		return nil, fmt.Errorf("image data is required")
	}

	// 画像をEmbeddingに変換
	imageVector, err := s.embedder.EmbedImage(ctx, params.Image.Data, params.Image.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("failed to embed image: %w", err)
	}

	topK := params.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	results, err := s.repo.SearchByCatalog(ctx, params.CatalogID, imageVector, topK)
	if err != nil {
		return nil, fmt.Errorf("caption search failed: %w", err)
	}

	recs := make([]Recommendation, 0, len(results))
	for i, r := range results {
		recs = append(recs, Recommendation{
			CaptionID: r.CaptionID,
			Caption:   r.Caption,
			Score:     r.Score,
			Rank:      i + 1,
		})
	}

	s.logger.Info("recommendation completed",
		"image", params.Image.Path,
		"catalogID", params.CatalogID,
		"results", len(recs),
	)

	return recs, nil
}

// RecommendAdhoc は与えられたキャプション一覧をその場で埋め込み、上位k件を返す
// カタログもデータベースも使わない、メモリ内のみの推薦パス
func (s *Service) RecommendAdhoc(ctx context.Context, params AdhocParams) ([]Recommendation, error) {
	if len(params.Image.Data) == 0 {
		return nil, fmt.Errorf("image data is required")
	}
	if len(params.Captions) == 0 {
		return nil, fmt.Errorf("at least one caption is required")
	}

	// 画像とキャプションをそれぞれEmbeddingに変換
	imageVector, err := s.embedder.EmbedImage(ctx, params.Image.Data, params.Image.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("failed to embed image: %w", err)
	}

	captionVectors, err := s.embedCaptions(ctx, params.Captions)
	if err != nil {
		return nil, err
	}

	topK := params.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	// コサイン類似度で上位k件を選ぶ
	matches, err := TopK(imageVector, captionVectors, topK)
	if err != nil {
		return nil, fmt.Errorf("ranking failed: %w", err)
	}

	recs := make([]Recommendation, 0, len(matches))
	for i, m := range matches {
		recs = append(recs, Recommendation{
			Caption: params.Captions[m.Index],
			Score:   m.Score,
			Rank:    i + 1,
		})
	}

	s.logger.Info("adhoc recommendation completed",
		"image", params.Image.Path,
		"candidates", len(params.Captions),
		"results", len(recs),
	)

	return recs, nil
}

// embedCaptions はキャプションをEmbedderの最大バッチサイズごとに分割して埋め込む
func (s *Service) embedCaptions(ctx context.Context, captions []string) ([][]float32, error) {
	batchSize := s.embedder.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = 1
	}

	vectors := make([][]float32, 0, len(captions))
	for start := 0; start < len(captions); start += batchSize {
		end := start + batchSize
		if end > len(captions) {
			end = len(captions)
		}

		batchVectors, err := s.embedder.BatchEmbed(ctx, captions[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed captions [%d:%d]: %w", start, end, err)
		}
		if len(batchVectors) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(batchVectors), end-start)
		}

		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}
