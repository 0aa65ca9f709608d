package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Conversation struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      string         `gorm:"type:varchar(255);not null;index"`
	UserName    *string        `gorm:"type:varchar(255)"`
	Query       string         `gorm:"type:text;not null"`
	Response    string         `gorm:"type:text;not null"`
	Recommended datatypes.JSON `gorm:"type:jsonb"`
	SessionId   *string        `gorm:"type:varchar(255)"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index"`
}

func (Conversation) TableName() string {
	return "conversations"
}
