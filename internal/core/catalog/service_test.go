package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	catalogs map[string]*Catalog

	createdCaptions []*Caption
	insertOverride  *int
	deletedIDs      []uuid.UUID
	listStats       []*CatalogStats
}

func newStubRepo() *stubRepo {
	return &stubRepo{catalogs: make(map[string]*Catalog)}
}

func (s *stubRepo) CreateIfNotExists(ctx context.Context, name string, description *string) (*Catalog, error) {
	if cat, ok := s.catalogs[name]; ok {
		return cat, nil
	}
	cat := &Catalog{ID: uuid.New(), Name: name, Description: description}
	s.catalogs[name] = cat
	return cat, nil
}

func (s *stubRepo) GetByName(ctx context.Context, name string) (*Catalog, error) {
	cat, ok := s.catalogs[name]
	if !ok {
		return nil, ErrCatalogNotFound
	}
	return cat, nil
}

func (s *stubRepo) ListWithStats(ctx context.Context) ([]*CatalogStats, error) {
	return s.listStats, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

func (s *stubRepo) CreateCaptions(ctx context.Context, catalogID uuid.UUID, captions []*Caption) (int, error) {
	s.createdCaptions = append(s.createdCaptions, captions...)
	if s.insertOverride != nil {
		return *s.insertOverride, nil
	}
	return len(captions), nil
}

func (s *stubRepo) ListCaptions(ctx context.Context, catalogID uuid.UUID) ([]*Caption, error) {
	return nil, nil
}

// stubTokenCounter は空白区切りの語数をトークン数として返す
type stubTokenCounter struct{}

func (stubTokenCounter) CountTokens(text string) int {
	return len(strings.Fields(text))
}

type stubCaptionSource struct {
	captions []string
	err      error
}

func (s *stubCaptionSource) ReadCaptions(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.captions, nil
}

func TestServiceCreateRequiresName(t *testing.T) {
	svc := NewService(newStubRepo(), stubTokenCounter{})

	_, err := svc.Create(context.Background(), "   ", nil)
	assert.Error(t, err)
}

func TestServiceCreateIsIdempotent(t *testing.T) {
	svc := NewService(newStubRepo(), stubTokenCounter{})

	first, err := svc.Create(context.Background(), "landscape", nil)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), "landscape", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestServiceDelete(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, stubTokenCounter{})

	cat, err := svc.Create(context.Background(), "landscape", nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "landscape")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{cat.ID}, repo.deletedIDs)
}

func TestServiceDeleteNotFound(t *testing.T) {
	svc := NewService(newStubRepo(), stubTokenCounter{})

	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCatalogNotFound)
}

func TestServiceImport(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, stubTokenCounter{})

	source := &stubCaptionSource{captions: []string{
		"夕暮れの海辺",
		"  雪山の稜線  ", // 前後の空白は除去される
		"",
		"夕暮れの海辺", // 取り込み元内の重複
	}}

	result, err := svc.Import(context.Background(), "landscape", source)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Rejected)

	require.Len(t, repo.createdCaptions, 2)
	assert.Equal(t, "夕暮れの海辺", repo.createdCaptions[0].Text)
	assert.Equal(t, "雪山の稜線", repo.createdCaptions[1].Text)
	assert.NotEmpty(t, repo.createdCaptions[0].ContentHash)
	assert.NotEqual(t, repo.createdCaptions[0].ContentHash, repo.createdCaptions[1].ContentHash)
}

func TestServiceImportRejectsOverlongCaptions(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, stubTokenCounter{})

	// MaxCaptionTokens を超える語数のキャプションは除外される
	long := strings.Repeat("word ", MaxCaptionTokens+1)
	source := &stubCaptionSource{captions: []string{long, "short caption"}}

	result, err := svc.Import(context.Background(), "landscape", source)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Rejected)
	require.Len(t, repo.createdCaptions, 1)
	assert.Equal(t, "short caption", repo.createdCaptions[0].Text)
}

func TestServiceImportCountsStoreConflictsAsDuplicates(t *testing.T) {
	repo := newStubRepo()
	inserted := 1
	repo.insertOverride = &inserted

	svc := NewService(repo, stubTokenCounter{})

	source := &stubCaptionSource{captions: []string{"one", "two", "three"}}

	result, err := svc.Import(context.Background(), "landscape", source)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Duplicates)
}

func TestServiceImportFailsWithoutValidCaptions(t *testing.T) {
	svc := NewService(newStubRepo(), stubTokenCounter{})

	source := &stubCaptionSource{captions: []string{"", "   "}}

	_, err := svc.Import(context.Background(), "landscape", source)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid captions")
}

func TestHashCaptionIsDeterministic(t *testing.T) {
	assert.Equal(t, hashCaption("abc"), hashCaption("abc"))
	assert.NotEqual(t, hashCaption("abc"), hashCaption("abd"))
	assert.Len(t, hashCaption("abc"), 64)
}
