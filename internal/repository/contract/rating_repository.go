package contract

import (
	"context"

	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/repository/specification"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *entity.WineRating) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// TopRated aggregates mean rating grouped by wine name for one user,
	// ordered by mean descending.
	TopRated(ctx context.Context, userId string, limit int) ([]entity.RatedWine, error)
}
