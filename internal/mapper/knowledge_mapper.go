package mapper

import (
	"encoding/json"

	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(c *model.KnowledgeChunk) *entity.KnowledgeChunk {
	if c == nil {
		return nil
	}

	metadata := map[string]interface{}{}
	if len(c.Metadata) > 0 {
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.KnowledgeChunk{
		Id:        c.Id,
		Text:      c.Content,
		Metadata:  metadata,
		CreatedAt: c.CreatedAt,
	}
}

// ToModel maps a chunk plus its embedding into a row. The embedding is not
// part of the entity; it belongs to the store's indexing lifecycle.
func (m *KnowledgeMapper) ToModel(c *entity.KnowledgeChunk, embedding []float32) *model.KnowledgeChunk {
	if c == nil {
		return nil
	}

	metadata := datatypes.JSON("{}")
	if c.Metadata != nil {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.KnowledgeChunk{
		Id:        c.Id,
		Content:   c.Text,
		Metadata:  metadata,
		Embedding: pgvector.NewVector(embedding),
	}
}
