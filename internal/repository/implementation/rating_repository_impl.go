package implementation

import (
	"context"

	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/mapper"
	"wine-sommelier-be/internal/model"
	"wine-sommelier-be/internal/repository/contract"
	"wine-sommelier-be/internal/repository/specification"

	"gorm.io/gorm"
)

type RatingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RatingMapper
}

func NewRatingRepository(db *gorm.DB) contract.RatingRepository {
	return &RatingRepositoryImpl{
		db:     db,
		mapper: mapper.NewRatingMapper(),
	}
}

func (r *RatingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RatingRepositoryImpl) Create(ctx context.Context, rating *entity.WineRating) error {
	m := r.mapper.ToModel(rating)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*rating = *r.mapper.ToEntity(m)
	return nil
}

func (r *RatingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.WineRating{}).Count(&count).Error
	return count, err
}

func (r *RatingRepositoryImpl) TopRated(ctx context.Context, userId string, limit int) ([]entity.RatedWine, error) {
	if limit <= 0 {
		limit = 3
	}
	var results []entity.RatedWine
	err := r.db.WithContext(ctx).
		Model(&model.WineRating{}).
		Select("wine_name, AVG(rating) as avg_rating").
		Where("user_id = ?", userId).
		Group("wine_name").
		Order("avg_rating DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
