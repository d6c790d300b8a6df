package searchindex

import (
	"context"
	"testing"

	"github.com/greenplate/myfridge/internal/db"
	"github.com/greenplate/myfridge/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	refreshFn      func(ctx context.Context, name string) error
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	delFn          func(ctx context.Context, keys ...string) error
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	searchKNNFn    func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchBM25Fn   func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchFilterFn func(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	searchCountFn  func(ctx context.Context, index string, f filter.Filter) (int, error)
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Refresh(ctx context.Context, name string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, name)
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchBM25Fn != nil {
		return m.searchBM25Fn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchFilter(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if m.searchFilterFn != nil {
		return m.searchFilterFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index string, f filter.Filter) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, f)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, 4)
	return repo, ms
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}
