package contract

import (
	"context"

	"wine-sommelier-be/internal/entity"
)

type PreferenceRepository interface {
	FindByUserId(ctx context.Context, userId string) (*entity.UserPreference, error)

	// UpsertPreferences merges the given preference map into the user's row,
	// creating it on first write.
	UpsertPreferences(ctx context.Context, userId string, userName *string, preferences map[string]interface{}) error

	// IncrementInteractions bumps the interaction counter and records the
	// last session id as a single statement, creating the row if absent.
	IncrementInteractions(ctx context.Context, userId string, userName *string, sessionId *string) error

	// AddFavorite appends the wine to the user's favorites as one atomic
	// upsert with set semantics; concurrent raters cannot lose an update.
	AddFavorite(ctx context.Context, userId string, wineName string) error
}
