package mapper

import (
	"encoding/json"

	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/model"

	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var recommended []entity.ScoredItem
	if len(c.Recommended) > 0 {
		// A malformed blob yields an empty list rather than a failed read.
		_ = json.Unmarshal(c.Recommended, &recommended)
	}

	return &entity.Conversation{
		Id:          c.Id,
		UserId:      c.UserId,
		UserName:    c.UserName,
		Query:       c.Query,
		Response:    c.Response,
		Recommended: recommended,
		SessionId:   c.SessionId,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *ConversationMapper) ToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	recommended := datatypes.JSON("[]")
	if len(c.Recommended) > 0 {
		if raw, err := json.Marshal(c.Recommended); err == nil {
			recommended = raw
		}
	}

	return &model.Conversation{
		Id:          c.Id,
		UserId:      c.UserId,
		UserName:    c.UserName,
		Query:       c.Query,
		Response:    c.Response,
		Recommended: recommended,
		SessionId:   c.SessionId,
		CreatedAt:   c.CreatedAt,
	}
}
