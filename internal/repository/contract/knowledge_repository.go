package contract

import (
	"context"

	"wine-sommelier-be/internal/entity"
)

// MetadataFilter restricts a similarity search to rows whose metadata field
// equals the given value. At most one field is filtered per query.
type MetadataFilter struct {
	Field string
	Value string
}

type KnowledgeRepository interface {
	// CreateBulk inserts chunks with their embeddings. Callers are expected
	// to have filtered out already-stored ids via ExistingIds.
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk, embeddings [][]float32) error

	// ExistingIds returns which of the given chunk ids are already stored.
	ExistingIds(ctx context.Context, ids []string) (map[string]bool, error)

	// SearchSimilar runs a cosine nearest-neighbour search, optionally
	// restricted by a single metadata equality filter. Results come back in
	// the store's distance order.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, filter *MetadataFilter) ([]*entity.ScoredChunk, error)

	Count(ctx context.Context) (int64, error)
	FindSample(ctx context.Context, limit int) ([]*entity.KnowledgeChunk, error)
}
