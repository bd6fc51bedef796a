package imagefs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Scanner はディレクトリを走査して画像ファイルを列挙する
// .gitignore と .caprecignore のパターンに一致するパスは除外する
type Scanner struct {
	ignore *gitignore.GitIgnore
}

// NewScanner は rootDir 配下の ignore ファイルを読み込んで Scanner を作成する
func NewScanner(rootDir string) (*Scanner, error) {
	var patterns []string

	for _, name := range []string{".gitignore", ".caprecignore"} {
		path := filepath.Join(rootDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		filePatterns, err := readIgnoreFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		patterns = append(patterns, filePatterns...)
	}

	patterns = append(patterns, defaultIgnorePatterns()...)

	var matcher *gitignore.GitIgnore
	if len(patterns) > 0 {
		matcher = gitignore.CompileIgnoreLines(patterns...)
	}

	return &Scanner{ignore: matcher}, nil
}

// ShouldIgnore はパスが除外対象かどうかを判定する
func (s *Scanner) ShouldIgnore(path string) bool {
	if s.ignore == nil {
		return false
	}
	return s.ignore.MatchesPath(path)
}

// ScanImages は rootDir 配下の画像ファイルのパス一覧を返す
// 拡張子ベース（enry.IsImage）で候補を絞り、内容のMIMEタイプで確定する
func (s *Scanner) ScanImages(rootDir string) ([]string, error) {
	var images []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			relPath = path
		}

		if d.IsDir() {
			if path != rootDir && s.ShouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.ShouldIgnore(relPath) {
			return nil
		}

		if !enry.IsImage(d.Name()) {
			return nil
		}

		// 拡張子だけでは偽装を検出できないため先頭バイトで確認する
		header, err := readHeader(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !strings.HasPrefix(detectMIMEType(header), "image/") {
			return nil
		}

		images = append(images, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	return images, nil
}

// readHeader はMIME判定に必要な先頭512バイトを読み込む
// 空ファイルは空のヘッダとして扱う
func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// readIgnoreFile は ignore ファイルを読み込んでパターンのスライスを返す
func readIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}

	return patterns, nil
}

// defaultIgnorePatterns はデフォルトの除外パターンを返す
func defaultIgnorePatterns() []string {
	return []string{
		".git",
		"node_modules",
		"vendor",
		".DS_Store",
		"*.tmp",
		"*.temp",
		".cache",
		"__pycache__",
	}
}
