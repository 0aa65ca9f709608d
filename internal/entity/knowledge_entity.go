package entity

import "time"

// KnowledgeChunk is the atomic unit indexed for retrieval: a bounded piece of
// text plus metadata. The Id is deterministic from source and position so
// re-ingestion of the same source never produces duplicates.
type KnowledgeChunk struct {
	Id        string
	Text      string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// Type returns the chunk "type" metadata field ("wine" or "knowledge").
func (c *KnowledgeChunk) Type() string {
	if t, ok := c.Metadata["type"].(string); ok {
		return t
	}
	return ""
}

// ScoredChunk is a chunk paired with its cosine distance from a query
// embedding, as returned by the knowledge store.
type ScoredChunk struct {
	Chunk    *KnowledgeChunk
	Distance float64
}
