package dto

import (
	"time"

	"wine-sommelier-be/internal/entity"
)

type RateWineRequest struct {
	UserId   string `json:"user_id" validate:"required,max=255"`
	UserName string `json:"user_name,omitempty" validate:"max=255"`
	WineName string `json:"wine_name" validate:"required,max=255"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Notes    string `json:"notes,omitempty" validate:"max=2000"`
}

type RateWineResponse struct {
	WineName      string `json:"wine_name"`
	Rating        int    `json:"rating"`
	AddedFavorite bool   `json:"added_favorite"`
}

type UpsertPreferencesRequest struct {
	UserId      string                 `json:"user_id" validate:"required,max=255"`
	UserName    string                 `json:"user_name,omitempty" validate:"max=255"`
	Preferences map[string]interface{} `json:"preferences" validate:"required"`
}

type ConversationTurnResponse struct {
	Query       string    `json:"query"`
	Response    string    `json:"response"`
	Recommended []string  `json:"recommended"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserContextResponse struct {
	UserId        string                     `json:"user_id"`
	UserName      *string                    `json:"user_name,omitempty"`
	Recent        []ConversationTurnResponse `json:"recent_conversations"`
	Preferences   map[string]interface{}     `json:"preferences"`
	FavoriteWines []string                   `json:"favorite_wines"`
	TopRated      []entity.RatedWine         `json:"top_rated_wines"`
}
