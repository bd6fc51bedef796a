package imagefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerScanImages(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "a.png", pngHeader)
	writeFile(t, dir, "sub/b.png", pngHeader)
	writeFile(t, dir, "captions.txt", []byte("not an image"))
	// 拡張子は画像だが内容がテキストのファイルは除外される
	writeFile(t, dir, "fake.png", []byte("plain text pretending to be a png"))
	// 空ファイルは走査を中断させずに読み飛ばされる
	writeFile(t, dir, "empty.png", nil)

	scanner, err := NewScanner(dir)
	require.NoError(t, err)

	images, err := scanner.ScanImages(dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "sub", "b.png"),
	}, images)
}

func TestScannerHonorsIgnoreFiles(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, ".caprecignore", []byte("excluded/\n*.draft.png\n"))
	writeFile(t, dir, "keep.png", pngHeader)
	writeFile(t, dir, "banner.draft.png", pngHeader)
	writeFile(t, dir, "excluded/c.png", pngHeader)

	scanner, err := NewScanner(dir)
	require.NoError(t, err)

	images, err := scanner.ScanImages(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "keep.png")}, images)
}

func TestScannerDefaultIgnorePatterns(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "keep.png", pngHeader)
	writeFile(t, dir, ".git/objects/d.png", pngHeader)
	writeFile(t, dir, "node_modules/pkg/e.png", pngHeader)

	scanner, err := NewScanner(dir)
	require.NoError(t, err)

	images, err := scanner.ScanImages(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "keep.png")}, images)
}

func TestScannerShouldIgnore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", []byte("# コメント行は無視\ntmp/\n"))

	scanner, err := NewScanner(dir)
	require.NoError(t, err)

	assert.True(t, scanner.ShouldIgnore("tmp/x.png"))
	assert.True(t, scanner.ShouldIgnore("node_modules"))
	assert.False(t, scanner.ShouldIgnore("images/x.png"))
}
