package imagefs

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jinford/caprec/internal/core/recommend"
)

// DefaultMaxImageBytes は読み込みを許容する画像の最大サイズ
const DefaultMaxImageBytes = 20 * 1024 * 1024

var (
	// ErrNotAnImage は画像ではないファイルを読み込もうとした場合のエラー
	ErrNotAnImage = errors.New("file is not an image")

	// ErrImageTooLarge はサイズ上限を超える画像のエラー
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

// Loader は画像ファイルを読み込み、MIMEタイプを判定する
type Loader struct {
	maxBytes int64
}

// NewLoader は新しい Loader を作成する
// maxBytes が0以下の場合はデフォルト上限を使う
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Loader{maxBytes: maxBytes}
}

// LoadImage は画像ファイルを読み込んで ImageInput を返す
// 内容からMIMEタイプを判定し、image/* 以外は拒否する
func (l *Loader) LoadImage(path string) (recommend.ImageInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return recommend.ImageInput{}, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.Size() > l.maxBytes {
		return recommend.ImageInput{}, fmt.Errorf("%w: %s (%d bytes, limit %d)", ErrImageTooLarge, path, info.Size(), l.maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return recommend.ImageInput{}, fmt.Errorf("failed to read image file: %w", err)
	}

	mimeType := detectMIMEType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return recommend.ImageInput{}, fmt.Errorf("%w: %s (detected %s)", ErrNotAnImage, path, mimeType)
	}

	return recommend.ImageInput{
		Path:     path,
		Data:     data,
		MIMEType: mimeType,
	}, nil
}

// detectMIMEType はファイル内容からMIMEタイプを判定する
func detectMIMEType(content []byte) string {
	detected := http.DetectContentType(content)
	if idx := strings.Index(detected, ";"); idx != -1 {
		detected = detected[:idx]
	}
	return strings.TrimSpace(detected)
}
