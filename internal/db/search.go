package db

import "github.com/greenplate/myfridge/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search against a named vector field.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Filter       filter.Filter
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search over the schema's TEXT fields.
type TextQuery struct {
	IndexName    string
	Query        string
	Filter       filter.Filter
	TopK         int
	ReturnFields []string
}

// FilterQuery is the input for filter-only retrieval (no ranking signal).
type FilterQuery struct {
	IndexName    string
	Filter       filter.Filter
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
