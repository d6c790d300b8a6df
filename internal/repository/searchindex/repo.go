// Package searchindex persists flattened dish documents in the RediSearch
// index and runs the retrieval channels over them.
package searchindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/greenplate/myfridge/internal/db"
	"github.com/greenplate/myfridge/internal/domain"
	"github.com/greenplate/myfridge/internal/domain/document"
	"github.com/greenplate/myfridge/internal/domain/search/filter"
	"github.com/greenplate/myfridge/internal/domain/search/result"
)

// store is the consumer interface for index operations (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Refresh(ctx context.Context, name string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchFilter(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, f filter.Filter) (int, error)
}

// hitReturnFields lists the hash fields every retrieval channel pulls back.
var hitReturnFields = []string{FieldDishID, FieldRecipeID, FieldDishName, FieldIngredients}

// Repo implements the indexing and retrieval contracts of the use-case layer.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a search index repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// WithHNSW overrides HNSW build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the dish index when absent. Safe to call on every start.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.vectorDim, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		// concurrent starts race on creation
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// DeleteAll removes every indexed document. This is the replace boundary of a
// reindex run; the index definition itself stays.
func (r *Repo) DeleteAll(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, DocPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return len(keys), nil
}

// BulkIndex writes a batch of documents in one pipelined round-trip.
func (r *Repo) BulkIndex(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		if docs[i].HasVectors() && len(docs[i].CoreVector()) != r.vectorDim {
			return fmt.Errorf("document %s: %w", docs[i].ID(), domain.ErrVectorDimMismatch)
		}
		items[i] = db.HashSetItem{
			Key:    docKey(&docs[i]),
			Fields: buildHashFields(&docs[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("bulk index %d documents: %w", len(docs), err)
	}
	return nil
}

// Refresh waits until the index reflects all prior writes.
func (r *Repo) Refresh(ctx context.Context) error {
	if err := r.store.Refresh(ctx, IndexName); err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}
	return nil
}

// Count returns the number of documents currently visible in the index.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, filter.Filter{})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// SearchLexical runs the BM25 channel over the weighted TEXT fields.
func (r *Repo) SearchLexical(
	ctx context.Context, query string, f filter.Filter, window int,
) ([]result.Hit, error) {
	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    IndexName,
		Query:        query,
		Filter:       f,
		TopK:         window,
		ReturnFields: hitReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	return parseHits(sr)
}

// SearchVector runs one KNN channel against the named vector field.
func (r *Repo) SearchVector(
	ctx context.Context, field string, vector []float32, f filter.Filter, window int,
) ([]result.Hit, error) {
	if len(vector) != r.vectorDim {
		return nil, fmt.Errorf("query vector dim %d, index dim %d: %w",
			len(vector), r.vectorDim, domain.ErrVectorDimMismatch)
	}
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		VectorField:  field,
		Filter:       f,
		Vector:       vector,
		K:            window,
		ReturnFields: hitReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", field, err)
	}
	return parseHits(sr)
}

// SearchFilterOnly retrieves documents matching the ingredient filter alone.
// There is no ranking signal on this path; index order is returned as-is.
func (r *Repo) SearchFilterOnly(
	ctx context.Context, f filter.Filter, window int,
) ([]result.Hit, error) {
	sr, err := r.store.SearchFilter(ctx, &db.FilterQuery{
		IndexName:    IndexName,
		Filter:       f,
		Offset:       0,
		Limit:        window,
		ReturnFields: hitReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("filter search: %w", err)
	}
	return parseHits(sr)
}

func parseHits(sr *db.SearchResult) ([]result.Hit, error) {
	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hit, err := parseHit(e)
		if err != nil {
			// битый документ не должен ронять весь поиск
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
