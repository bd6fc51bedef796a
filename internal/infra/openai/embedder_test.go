package openai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedderDefaults(t *testing.T) {
	embedder := NewEmbedder("dummy-key")

	assert.Equal(t, DefaultEmbeddingModel, embedder.ModelName())
	assert.Equal(t, DefaultEmbeddingDimension, embedder.Dimension())
	assert.Equal(t, MaxEmbedBatchSize, embedder.MaxBatchSize())
}

func TestNewEmbedderOptionsOverrideDefaults(t *testing.T) {
	embedder := NewEmbedder("dummy-key",
		WithEmbeddingModel("custom-model"),
		WithEmbeddingDimension(42),
	)

	meta := embedder.Metadata()
	assert.Equal(t, "custom-model", meta.ModelName)
	assert.Equal(t, 42, meta.Dimension)
}

func TestBatchEmbedRejectsEmptyInput(t *testing.T) {
	embedder := NewEmbedder("dummy-key")

	_, err := embedder.BatchEmbed(context.Background(), nil)
	assert.Error(t, err)
}

func TestBatchEmbedRejectsOversizedBatch(t *testing.T) {
	embedder := NewEmbedder("dummy-key")

	texts := make([]string, MaxEmbedBatchSize+1)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}

	_, err := embedder.BatchEmbed(context.Background(), texts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch size exceeds maximum")
}

func TestEmbedImageRejectsEmptyData(t *testing.T) {
	embedder := NewEmbedder("dummy-key")

	_, err := embedder.EmbedImage(context.Background(), nil, "image/png")
	assert.Error(t, err)
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, isRateLimitError(nil))
	assert.False(t, isRateLimitError(fmt.Errorf("not an api error")))
}
