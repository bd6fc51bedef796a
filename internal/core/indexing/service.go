package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service はキャプションEmbedding生成のユースケースを提供する
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

// Run はカタログ配下のキャプションに対してEmbeddingを生成する
// 再実行しても未生成分のみ処理する（冪等）
func (s *Service) Run(ctx context.Context, params IndexParams) (*IndexResult, error) {
	if params.CatalogID == uuid.Nil {
		return nil, fmt.Errorf("catalogID is required")
	}

	startTime := time.Now()
	model := s.embedder.ModelName()

	var (
		captions []*PendingCaption
		skipped  int
		err      error
	)
	if params.Force {
		captions, err = s.repo.ListAllCaptions(ctx, params.CatalogID)
	} else {
		captions, err = s.repo.ListPendingCaptions(ctx, params.CatalogID, model)
		if err == nil {
			// 生成済み分はスキップ件数として報告する
			skipped, err = s.repo.CountEmbeddings(ctx, params.CatalogID, model)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list captions: %w", err)
	}

	if len(captions) == 0 {
		s.logger.Info("no pending captions", "catalogID", params.CatalogID, "model", model)
		return &IndexResult{Skipped: skipped, Duration: time.Since(startTime)}, nil
	}

	batchSize := s.embedder.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = 1
	}

	embedded := 0
	for start := 0; start < len(captions); start += batchSize {
		end := start + batchSize
		if end > len(captions) {
			end = len(captions)
		}
		batch := captions[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed caption batch [%d:%d]: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(batch))
		}

		embeddings := make([]*CaptionEmbedding, len(batch))
		for i, c := range batch {
			embeddings[i] = &CaptionEmbedding{
				CaptionID: c.ID,
				Model:     model,
				Dimension: len(vectors[i]),
				Vector:    vectors[i],
			}
		}

		if err := s.repo.UpsertEmbeddings(ctx, embeddings); err != nil {
			return nil, fmt.Errorf("failed to store embeddings: %w", err)
		}

		embedded += len(batch)
		s.logger.Info("embedding batch stored",
			"catalogID", params.CatalogID,
			"progress", fmt.Sprintf("%d/%d", embedded, len(captions)),
		)
	}

	result := &IndexResult{
		Embedded: embedded,
		Skipped:  skipped,
		Duration: time.Since(startTime),
	}

	s.logger.Info("embedding generation completed",
		"catalogID", params.CatalogID,
		"model", model,
		"embedded", result.Embedded,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)

	return result, nil
}
