package recommend

import (
	"fmt"
	"math"
	"sort"
)

// Match は候補ベクトルのインデックスとコサイン類似度の組を表す
type Match struct {
	Index int
	Score float64
}

// Cosine は2つのベクトルのコサイン類似度を返す
// ノルムが0のベクトルに対しては0を返す
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK はクエリベクトルに対する候補ベクトルの上位k件を降順で返す
// 同点の場合は入力順を保持する（安定ソート）
func TopK(query []float32, candidates [][]float32, k int) ([]Match, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidate vectors provided")
	}

	matches := make([]Match, len(candidates))
	for i, c := range candidates {
		if len(c) != len(query) {
			return nil, fmt.Errorf("dimension mismatch: query=%d candidate[%d]=%d", len(query), i, len(c))
		}
		matches[i] = Match{Index: i, Score: Cosine(query, c)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k < 0 {
		k = 0
	}
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}
