package unitofwork

import (
	"context"

	"wine-sommelier-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	PreferenceRepository() contract.PreferenceRepository
	RatingRepository() contract.RatingRepository
	KnowledgeRepository() contract.KnowledgeRepository
}
