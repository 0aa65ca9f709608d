package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/mapper"
	"wine-sommelier-be/internal/model"
	"wine-sommelier-be/internal/repository/contract"

	"gorm.io/gorm"
)

type PreferenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PreferenceMapper
}

func NewPreferenceRepository(db *gorm.DB) contract.PreferenceRepository {
	return &PreferenceRepositoryImpl{
		db:     db,
		mapper: mapper.NewPreferenceMapper(),
	}
}

func (r *PreferenceRepositoryImpl) FindByUserId(ctx context.Context, userId string) (*entity.UserPreference, error) {
	var m model.UserPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PreferenceRepositoryImpl) UpsertPreferences(ctx context.Context, userId string, userName *string, preferences map[string]interface{}) error {
	raw, err := json.Marshal(preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	// Merge instead of replace so partial preference updates do not wipe
	// fields declared in earlier turns.
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO user_preferences (user_id, user_name, preferences, favorite_wines, total_interactions, last_updated)
		VALUES (?, ?, ?::jsonb, '[]'::jsonb, 0, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			preferences  = COALESCE(user_preferences.preferences, '{}'::jsonb) || EXCLUDED.preferences,
			user_name    = COALESCE(EXCLUDED.user_name, user_preferences.user_name),
			last_updated = NOW()
	`, userId, userName, string(raw)).Error
}

func (r *PreferenceRepositoryImpl) IncrementInteractions(ctx context.Context, userId string, userName *string, sessionId *string) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO user_preferences (user_id, user_name, preferences, favorite_wines, total_interactions, last_session_id, last_updated)
		VALUES (?, ?, '{}'::jsonb, '[]'::jsonb, 1, ?, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_interactions = user_preferences.total_interactions + 1,
			user_name          = COALESCE(EXCLUDED.user_name, user_preferences.user_name),
			last_session_id    = COALESCE(EXCLUDED.last_session_id, user_preferences.last_session_id),
			last_updated       = NOW()
	`, userId, userName, sessionId).Error
}

func (r *PreferenceRepositoryImpl) AddFavorite(ctx context.Context, userId string, wineName string) error {
	// Single-statement upsert; jsonb_exists instead of the ? operator because
	// gorm would treat ? as a bind placeholder. Append only when absent, which
	// gives favorites set semantics under concurrent raters.
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO user_preferences (user_id, preferences, favorite_wines, total_interactions, last_updated)
		VALUES (?, '{}'::jsonb, jsonb_build_array(?::text), 0, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			favorite_wines = CASE
				WHEN jsonb_exists(COALESCE(user_preferences.favorite_wines, '[]'::jsonb), ?::text)
					THEN user_preferences.favorite_wines
				ELSE COALESCE(user_preferences.favorite_wines, '[]'::jsonb) || to_jsonb(?::text)
			END,
			last_updated = NOW()
	`, userId, wineName, wineName, wineName).Error
}
