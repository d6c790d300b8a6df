package search

import (
	"context"

	"github.com/greenplate/myfridge/internal/domain"
	"github.com/greenplate/myfridge/internal/domain/search/filter"
	"github.com/greenplate/myfridge/internal/domain/search/result"
)

// Repository defines the storage contract for the retrieval channels.
type Repository interface {
	SearchLexical(
		ctx context.Context, query string, f filter.Filter, window int,
	) ([]result.Hit, error)

	SearchVector(
		ctx context.Context, field string, vector []float32, f filter.Filter, window int,
	) ([]result.Hit, error)

	SearchFilterOnly(
		ctx context.Context, f filter.Filter, window int,
	) ([]result.Hit, error)
}

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
