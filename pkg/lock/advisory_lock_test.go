package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLockID(t *testing.T) {
	id1 := GenerateLockID("index", "catalog-a")
	id2 := GenerateLockID("index", "catalog-a")
	id3 := GenerateLockID("index", "catalog-b")

	// 同じ入力からは常に同じIDが生成される
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func TestGenerateLockIDOrderSensitive(t *testing.T) {
	assert.NotEqual(t, GenerateLockID("a", "b"), GenerateLockID("b", "a"))
}
