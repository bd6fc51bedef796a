package imagefs

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-enry/go-enry/v2"

	"github.com/jinford/caprec/internal/core/catalog"
)

// FileSource は1行1キャプション形式のテキストファイルからキャプションを読み込む
type FileSource struct {
	path string
}

// NewFileSource は新しい FileSource を作成する
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

var _ catalog.CaptionSource = (*FileSource)(nil)

// ReadCaptions はファイルからキャプション一覧を読み込む
func (s *FileSource) ReadCaptions(ctx context.Context) ([]string, error) {
	return readCaptionFile(s.path)
}

// DirSource はディレクトリツリー内のテキストファイルからキャプションを読み込む
// バイナリファイル（enry.IsBinary）と ignore パターンに一致するパスは除外する
type DirSource struct {
	rootDir string
}

// NewDirSource は新しい DirSource を作成する
func NewDirSource(rootDir string) *DirSource {
	return &DirSource{rootDir: rootDir}
}

var _ catalog.CaptionSource = (*DirSource)(nil)

// ReadCaptions はディレクトリ配下の全テキストファイルからキャプション一覧を読み込む
func (s *DirSource) ReadCaptions(ctx context.Context) ([]string, error) {
	scanner, err := NewScanner(s.rootDir)
	if err != nil {
		return nil, err
	}

	var captions []string
	err = filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		relPath, relErr := filepath.Rel(s.rootDir, path)
		if relErr != nil {
			relPath = path
		}

		if d.IsDir() {
			if path != s.rootDir && scanner.ShouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if scanner.ShouldIgnore(relPath) {
			return nil
		}

		header, err := readHeader(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if enry.IsBinary(header) {
			return nil
		}

		lines, err := readCaptionFile(path)
		if err != nil {
			return err
		}
		captions = append(captions, lines...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan caption directory: %w", err)
	}

	return captions, nil
}

// readCaptionFile は1行1キャプション形式のファイルを読み込む
func readCaptionFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open caption file: %w", err)
	}
	defer f.Close()

	var captions []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		captions = append(captions, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read caption file: %w", err)
	}

	return captions, nil
}
