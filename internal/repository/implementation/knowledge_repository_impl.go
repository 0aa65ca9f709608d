package implementation

import (
	"context"
	"fmt"

	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/mapper"
	"wine-sommelier-be/internal/model"
	"wine-sommelier-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeRepository(db *gorm.DB) contract.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	models := make([]*model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c, embeddings[i])
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *KnowledgeRepositoryImpl) ExistingIds(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.KnowledgeChunk{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (r *KnowledgeRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, filter *contract.MetadataFilter) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	type row struct {
		model.KnowledgeChunk
		Distance float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, embedding <=> ? AS distance", queryVector)

	if filter != nil {
		query = query.Where("metadata ->> ? = ?", filter.Field, filter.Value)
	}

	err := query.
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*entity.ScoredChunk, len(rows))
	for i, res := range rows {
		results[i] = &entity.ScoredChunk{
			Chunk:    r.mapper.ToEntity(&res.KnowledgeChunk),
			Distance: res.Distance,
		}
	}
	return results, nil
}

func (r *KnowledgeRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.KnowledgeChunk{}).Count(&count).Error
	return count, err
}

func (r *KnowledgeRepositoryImpl) FindSample(ctx context.Context, limit int) ([]*entity.KnowledgeChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.KnowledgeChunk
	err := r.db.WithContext(ctx).Order("created_at ASC").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.KnowledgeChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
