package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterCountTokens(t *testing.T) {
	counter, err := NewCounter()
	if err != nil {
		// エンコーディングデータの取得にはネットワークが必要
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}

	assert.Equal(t, 0, counter.CountTokens(""))
	assert.Greater(t, counter.CountTokens("a photo of a cat sitting on a windowsill"), 5)

	// 長いテキストほどトークン数は増える
	short := counter.CountTokens("sunset")
	long := counter.CountTokens("a breathtaking sunset over the ocean with waves crashing on the shore")
	assert.Greater(t, long, short)
}
