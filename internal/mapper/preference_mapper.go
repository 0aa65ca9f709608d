package mapper

import (
	"encoding/json"

	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/model"

	"gorm.io/datatypes"
)

type PreferenceMapper struct{}

func NewPreferenceMapper() *PreferenceMapper {
	return &PreferenceMapper{}
}

func (m *PreferenceMapper) ToEntity(p *model.UserPreference) *entity.UserPreference {
	if p == nil {
		return nil
	}

	preferences := map[string]interface{}{}
	if len(p.Preferences) > 0 {
		_ = json.Unmarshal(p.Preferences, &preferences)
	}

	favorites := []string{}
	if len(p.FavoriteWines) > 0 {
		_ = json.Unmarshal(p.FavoriteWines, &favorites)
	}

	return &entity.UserPreference{
		UserId:            p.UserId,
		UserName:          p.UserName,
		Preferences:       preferences,
		FavoriteWines:     favorites,
		TotalInteractions: p.TotalInteractions,
		LastSessionId:     p.LastSessionId,
		LastUpdated:       p.LastUpdated,
	}
}

func (m *PreferenceMapper) ToModel(p *entity.UserPreference) *model.UserPreference {
	if p == nil {
		return nil
	}

	preferences := datatypes.JSON("{}")
	if p.Preferences != nil {
		if raw, err := json.Marshal(p.Preferences); err == nil {
			preferences = raw
		}
	}

	favorites := datatypes.JSON("[]")
	if p.FavoriteWines != nil {
		if raw, err := json.Marshal(p.FavoriteWines); err == nil {
			favorites = raw
		}
	}

	return &model.UserPreference{
		UserId:            p.UserId,
		UserName:          p.UserName,
		Preferences:       preferences,
		FavoriteWines:     favorites,
		TotalInteractions: p.TotalInteractions,
		LastSessionId:     p.LastSessionId,
		LastUpdated:       p.LastUpdated,
	}
}
