package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// MaxCaptionTokens はEmbedding入力として許容するキャプションの最大トークン数
const MaxCaptionTokens = 512

// TokenCounter はテキストのトークン数をカウントするインターフェース
type TokenCounter interface {
	CountTokens(text string) int
}

// CaptionSource はキャプション文字列の供給元を表すインターフェース
// ファイル・ディレクトリ・Gitリポジトリなどの取り込み元を抽象化する
type CaptionSource interface {
	// ReadCaptions はキャプション文字列の一覧を返す
	ReadCaptions(ctx context.Context) ([]string, error)
}

// Service はカタログ管理のユースケースを提供する
type Service struct {
	repo         Repository
	tokenCounter TokenCounter
	logger       *slog.Logger
}

type serviceOptions struct {
	logger *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService は新しい Service を作成する
func NewService(repo Repository, tokenCounter TokenCounter, opts ...ServiceOption) *Service {
	options := serviceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		repo:         repo,
		tokenCounter: tokenCounter,
		logger:       options.logger,
	}
}

// Create は名前でカタログを作成する（既存の場合はそれを返す）
func (s *Service) Create(ctx context.Context, name string, description *string) (*Catalog, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("catalog name is required")
	}

	cat, err := s.repo.CreateIfNotExists(ctx, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	return cat, nil
}

// Get は名前でカタログを取得する
func (s *Service) Get(ctx context.Context, name string) (*Catalog, error) {
	if name == "" {
		return nil, fmt.Errorf("catalog name is required")
	}
	return s.repo.GetByName(ctx, name)
}

// List は全カタログを統計情報付きで取得する
func (s *Service) List(ctx context.Context) ([]*CatalogStats, error) {
	return s.repo.ListWithStats(ctx)
}

// Delete は名前でカタログを削除する
func (s *Service) Delete(ctx context.Context, name string) error {
	cat, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, cat.ID); err != nil {
		return fmt.Errorf("failed to delete catalog: %w", err)
	}

	s.logger.Info("catalog deleted", "name", name, "catalogID", cat.ID)
	return nil
}

// ListCaptions はカタログ配下のキャプション一覧を取得する
func (s *Service) ListCaptions(ctx context.Context, name string) ([]*Caption, error) {
	cat, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCaptions(ctx, cat.ID)
}

// Import は CaptionSource からキャプションを取り込む
// 空行・トークン数超過の行は除外し、カタログ内の重複は content_hash で排除する
func (s *Service) Import(ctx context.Context, catalogName string, source CaptionSource) (*ImportResult, error) {
	startTime := time.Now()

	cat, err := s.repo.CreateIfNotExists(ctx, catalogName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}

	texts, err := source.ReadCaptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read captions: %w", err)
	}

	var (
		captions   []*Caption
		rejected   int
		duplicates int
	)
	seen := make(map[string]struct{}, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		tokenCount := s.tokenCounter.CountTokens(text)
		if tokenCount > MaxCaptionTokens {
			rejected++
			s.logger.Warn("caption exceeds token limit, skipped",
				"tokens", tokenCount,
				"limit", MaxCaptionTokens,
			)
			continue
		}

		hash := hashCaption(text)
		if _, ok := seen[hash]; ok {
			duplicates++
			continue
		}
		seen[hash] = struct{}{}

		captions = append(captions, &Caption{
			CatalogID:   cat.ID,
			Text:        text,
			TokenCount:  tokenCount,
			ContentHash: hash,
		})
	}

	if len(captions) == 0 {
		return nil, fmt.Errorf("no valid captions found in source")
	}

	inserted, err := s.repo.CreateCaptions(ctx, cat.ID, captions)
	if err != nil {
		return nil, fmt.Errorf("failed to store captions: %w", err)
	}

	result := &ImportResult{
		Imported:   inserted,
		Duplicates: duplicates + (len(captions) - inserted),
		Rejected:   rejected,
		Duration:   time.Since(startTime),
	}

	s.logger.Info("caption import completed",
		"catalog", catalogName,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"rejected", result.Rejected,
		"duration", result.Duration,
	)

	return result, nil
}

// hashCaption はキャプション本文のSHA-256ハッシュを返す
func hashCaption(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
