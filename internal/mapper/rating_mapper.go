package mapper

import (
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/model"
)

type RatingMapper struct{}

func NewRatingMapper() *RatingMapper {
	return &RatingMapper{}
}

func (m *RatingMapper) ToEntity(r *model.WineRating) *entity.WineRating {
	if r == nil {
		return nil
	}
	return &entity.WineRating{
		Id:        r.Id,
		UserId:    r.UserId,
		UserName:  r.UserName,
		WineName:  r.WineName,
		Rating:    r.Rating,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}

func (m *RatingMapper) ToModel(r *entity.WineRating) *model.WineRating {
	if r == nil {
		return nil
	}
	return &model.WineRating{
		Id:        r.Id,
		UserId:    r.UserId,
		UserName:  r.UserName,
		WineName:  r.WineName,
		Rating:    r.Rating,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}
