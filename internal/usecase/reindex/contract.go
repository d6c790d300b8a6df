package reindex

import (
	"context"

	"github.com/greenplate/myfridge/internal/domain"
	"github.com/greenplate/myfridge/internal/domain/catalog"
	"github.com/greenplate/myfridge/internal/domain/document"
)

// Catalog reads recipe pages from the relational store.
type Catalog interface {
	RecipePage(ctx context.Context, offset, limit int) ([]catalog.Recipe, error)
}

// Index is the write side of the search index.
type Index interface {
	EnsureIndex(ctx context.Context) error
	DeleteAll(ctx context.Context) (int, error)
	BulkIndex(ctx context.Context, docs []document.Document) error
	Refresh(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Pinger checks index store connectivity before a run starts.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BatchEmbedder vectorizes document texts, one provider call per channel per batch.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
