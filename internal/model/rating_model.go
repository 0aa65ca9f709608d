package model

import (
	"time"

	"github.com/google/uuid"
)

type WineRating struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string    `gorm:"type:varchar(255);not null;index"`
	UserName  *string   `gorm:"type:varchar(255)"`
	WineName  string    `gorm:"type:varchar(255);not null;index"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (WineRating) TableName() string {
	return "wine_ratings"
}
