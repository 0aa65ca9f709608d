package contract

import (
	"context"

	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/repository/specification"
)

type ConversationRepository interface {
	Create(ctx context.Context, turn *entity.Conversation) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountDistinctUsers(ctx context.Context) (int64, error)
}
