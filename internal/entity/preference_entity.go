package entity

import "time"

// UserPreference holds the per-user mutable profile. FavoriteWines has set
// semantics: a wine name appears at most once regardless of how often it is
// rated highly.
type UserPreference struct {
	UserId            string
	UserName          *string
	Preferences       map[string]interface{}
	FavoriteWines     []string
	TotalInteractions int64
	LastSessionId     *string
	LastUpdated       time.Time
}

// UserContext is what the memory store assembles for generation: recent
// turns (newest first), declared preferences, favorites and the user's
// top-rated wines. A never-seen user gets empty defaults, never an error.
type UserContext struct {
	UserId        string                 `json:"user_id"`
	UserName      *string                `json:"user_name,omitempty"`
	Recent        []Conversation         `json:"recent_conversations"`
	Preferences   map[string]interface{} `json:"preferences"`
	FavoriteWines []string               `json:"favorite_wines"`
	TopRated      []RatedWine            `json:"top_rated_wines"`
}

// RatedWine is an aggregated (mean) rating grouped by wine name.
type RatedWine struct {
	WineName  string  `json:"wine_name"`
	AvgRating float64 `json:"avg_rating"`
}
