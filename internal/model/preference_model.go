package model

import (
	"time"

	"gorm.io/datatypes"
)

type UserPreference struct {
	UserId            string         `gorm:"type:varchar(255);primaryKey"`
	UserName          *string        `gorm:"type:varchar(255)"`
	Preferences       datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	FavoriteWines     datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	TotalInteractions int64          `gorm:"not null;default:0"`
	LastSessionId     *string        `gorm:"type:varchar(255)"`
	LastUpdated       time.Time      `gorm:"autoUpdateTime"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
