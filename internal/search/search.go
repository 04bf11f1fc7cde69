package search

import "context"

// Searchable is the capability an entity implements to become indexable.
// The engine accepts any value satisfying it; entities opt in explicitly
// instead of inheriting indexing behavior from the storage layer.
type Searchable interface {
	SearchID() int64
	SearchIndex() string
	SearchValues() map[string]interface{}
}

// Engine is the external full text search collaborator. Query returns the
// ranked entity IDs for one page plus the total hit count; an empty result
// is a valid, non-error outcome.
type Engine interface {
	Index(ctx context.Context, doc Searchable) error
	Remove(ctx context.Context, index string, id int64) error
	Query(ctx context.Context, index, text string, page, pageSize int) ([]int64, int64, error)
}
