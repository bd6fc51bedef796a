package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1.0,
		},
		{
			name: "zero vector scores zero",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestTopKOrdersByScoreDescending(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},          // 直交: 0.0
		{1, 0},          // 一致: 1.0
		{1, 1},          // 45度: ~0.707
		{-1, 0},         // 反対: -1.0
		{0.5, 0.00001},  // ほぼ一致
	}

	matches, err := TopK(query, candidates, 5)
	require.NoError(t, err)
	require.Len(t, matches, 5)

	assert.Equal(t, 1, matches[0].Index)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)

	// スコアが降順であること
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestTopKTruncatesToK(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{1, 0},
		{0, 1},
		{1, 1},
	}

	matches, err := TopK(query, candidates, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestTopKWithKLargerThanCandidates(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{1, 0},
		{0, 1},
	}

	matches, err := TopK(query, candidates, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestTopKStableForTies(t *testing.T) {
	query := []float32{1, 0}
	// 同一スコアの候補は入力順を保持する
	candidates := [][]float32{
		{2, 0},
		{1, 0},
		{3, 0},
	}

	matches, err := TopK(query, candidates, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{matches[0].Index, matches[1].Index, matches[2].Index})
}

func TestTopKWithNonPositiveK(t *testing.T) {
	candidates := [][]float32{
		{1, 0},
		{0, 1},
	}

	matches, err := TopK([]float32{1, 0}, candidates, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = TopK([]float32{1, 0}, candidates, -3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTopKRejectsEmptyCandidates(t *testing.T) {
	_, err := TopK([]float32{1, 0}, nil, 3)
	assert.Error(t, err)
}

func TestTopKRejectsDimensionMismatch(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := [][]float32{
		{1, 0},
	}

	_, err := TopK(query, candidates, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestCosineNormalizedEquivalence(t *testing.T) {
	// スケールが異なってもコサイン類似度は同じ
	a := []float32{3, 4}
	b := []float32{6, 8}
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-9)

	norm := math.Sqrt(3*3 + 4*4)
	assert.InDelta(t, 5.0, norm, 1e-9)
}
