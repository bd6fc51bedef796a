package imagefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSourceReadCaptions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "captions.txt", []byte("夕暮れの海辺\n雪山の稜線\n\n青空と一本の木\n"))

	source := NewFileSource(path)

	captions, err := source.ReadCaptions(context.Background())
	require.NoError(t, err)

	// 空行の除外はカタログ側の責務なのでここではそのまま返す
	assert.Equal(t, []string{"夕暮れの海辺", "雪山の稜線", "", "青空と一本の木"}, captions)
}

func TestFileSourceMissingFile(t *testing.T) {
	source := NewFileSource(t.TempDir() + "/missing.txt")

	_, err := source.ReadCaptions(context.Background())
	assert.Error(t, err)
}

func TestDirSourceReadCaptions(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "a.txt", []byte("caption one\ncaption two\n"))
	writeFile(t, dir, "sub/b.txt", []byte("caption three\n"))
	// バイナリファイルは読み飛ばされる
	writeFile(t, dir, "photo.png", pngHeader)
	// 空ファイルがあっても走査は中断しない
	writeFile(t, dir, "empty.txt", nil)

	source := NewDirSource(dir)

	captions, err := source.ReadCaptions(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"caption one", "caption two", "caption three"}, captions)
}

func TestDirSourceHonorsIgnoreFiles(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, ".caprecignore", []byte("drafts/\n"))
	writeFile(t, dir, "a.txt", []byte("keep me\n"))
	writeFile(t, dir, "drafts/b.txt", []byte("drop me\n"))

	source := NewDirSource(dir)

	captions, err := source.ReadCaptions(context.Background())
	require.NoError(t, err)

	assert.Contains(t, captions, "keep me")
	assert.NotContains(t, captions, "drop me")
}
