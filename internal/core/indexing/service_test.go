package indexing

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	batchSize  int
	dimension  int
	embedErr   error
	embedCalls [][]string
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	s.embedCalls = append(s.embedCalls, texts)
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, s.dimension)
		vectors[i][0] = float32(i + 1)
	}
	return vectors, nil
}

func (s *stubEmbedder) ModelName() string { return "stub-model" }
func (s *stubEmbedder) Dimension() int    { return s.dimension }
func (s *stubEmbedder) MaxBatchSize() int { return s.batchSize }

type stubIndexRepo struct {
	pending       []*PendingCaption
	all           []*PendingCaption
	upserted      []*CaptionEmbedding
	existingCount int

	listPendingCalls int
	listAllCalls     int
}

func (s *stubIndexRepo) ListPendingCaptions(ctx context.Context, catalogID uuid.UUID, model string) ([]*PendingCaption, error) {
	s.listPendingCalls++
	return s.pending, nil
}

func (s *stubIndexRepo) ListAllCaptions(ctx context.Context, catalogID uuid.UUID) ([]*PendingCaption, error) {
	s.listAllCalls++
	return s.all, nil
}

func (s *stubIndexRepo) UpsertEmbeddings(ctx context.Context, embeddings []*CaptionEmbedding) error {
	s.upserted = append(s.upserted, embeddings...)
	return nil
}

func (s *stubIndexRepo) CountEmbeddings(ctx context.Context, catalogID uuid.UUID, model string) (int, error) {
	return s.existingCount, nil
}

func pendingCaptions(n int) []*PendingCaption {
	captions := make([]*PendingCaption, n)
	for i := range captions {
		captions[i] = &PendingCaption{ID: uuid.New(), Text: fmt.Sprintf("caption %d", i)}
	}
	return captions
}

func TestServiceRunRequiresCatalogID(t *testing.T) {
	svc := NewService(&stubIndexRepo{}, &stubEmbedder{batchSize: 10, dimension: 4})

	_, err := svc.Run(context.Background(), IndexParams{})
	assert.Error(t, err)
}

func TestServiceRunEmbedsPendingCaptions(t *testing.T) {
	repo := &stubIndexRepo{pending: pendingCaptions(3)}
	embedder := &stubEmbedder{batchSize: 10, dimension: 4}

	svc := NewService(repo, embedder)

	result, err := svc.Run(context.Background(), IndexParams{CatalogID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Embedded)
	assert.Equal(t, 1, repo.listPendingCalls)
	assert.Equal(t, 0, repo.listAllCalls)

	require.Len(t, repo.upserted, 3)
	assert.Equal(t, repo.pending[0].ID, repo.upserted[0].CaptionID)
	assert.Equal(t, "stub-model", repo.upserted[0].Model)
	assert.Equal(t, 4, repo.upserted[0].Dimension)
	assert.Len(t, repo.upserted[0].Vector, 4)
}

func TestServiceRunBatchesByMaxBatchSize(t *testing.T) {
	repo := &stubIndexRepo{pending: pendingCaptions(5)}
	embedder := &stubEmbedder{batchSize: 2, dimension: 4}

	svc := NewService(repo, embedder)

	result, err := svc.Run(context.Background(), IndexParams{CatalogID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Embedded)
	// 2件ずつの3バッチ（最後は1件）で処理される
	require.Len(t, embedder.embedCalls, 3)
	assert.Len(t, embedder.embedCalls[0], 2)
	assert.Len(t, embedder.embedCalls[1], 2)
	assert.Len(t, embedder.embedCalls[2], 1)
}

func TestServiceRunForceReembedsAll(t *testing.T) {
	repo := &stubIndexRepo{all: pendingCaptions(4)}
	embedder := &stubEmbedder{batchSize: 10, dimension: 4}

	svc := NewService(repo, embedder)

	result, err := svc.Run(context.Background(), IndexParams{CatalogID: uuid.New(), Force: true})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Embedded)
	assert.Equal(t, 1, repo.listAllCalls)
	assert.Equal(t, 0, repo.listPendingCalls)
}

func TestServiceRunNoPendingCaptions(t *testing.T) {
	repo := &stubIndexRepo{existingCount: 7}
	embedder := &stubEmbedder{batchSize: 10, dimension: 4}

	svc := NewService(repo, embedder)

	result, err := svc.Run(context.Background(), IndexParams{CatalogID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Embedded)
	assert.Equal(t, 7, result.Skipped)
	assert.Empty(t, embedder.embedCalls)
}

func TestServiceRunEmbedFailure(t *testing.T) {
	repo := &stubIndexRepo{pending: pendingCaptions(2)}
	embedder := &stubEmbedder{batchSize: 10, dimension: 4, embedErr: fmt.Errorf("rate limited")}

	svc := NewService(repo, embedder)

	_, err := svc.Run(context.Background(), IndexParams{CatalogID: uuid.New()})
	require.Error(t, err)
	assert.Empty(t, repo.upserted)
}
