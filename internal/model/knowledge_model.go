package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// KnowledgeChunk rows are keyed by the deterministic chunk id produced at
// ingestion, not a surrogate uuid, so idempotent re-ingestion is a primary
// key concern rather than application bookkeeping.
type KnowledgeChunk struct {
	Id        string          `gorm:"type:varchar(512);primaryKey"`
	Content   string          `gorm:"type:text;not null"`
	Metadata  datatypes.JSON  `gorm:"type:jsonb;not null;default:'{}'"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small dimensions
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}
