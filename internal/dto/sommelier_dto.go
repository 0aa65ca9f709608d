package dto

import (
	"wine-sommelier-be/internal/entity"
)

type QueryRequest struct {
	Query     string `json:"query" validate:"required,min=1,max=2000"`
	UserId    string `json:"user_id" validate:"required,max=255"`
	UserName  string `json:"user_name,omitempty" validate:"max=255"`
	SessionId string `json:"session_id,omitempty" validate:"max=255"`
}

type QueryResponse struct {
	Response        string               `json:"response"`
	Category        string               `json:"category"`
	Confidence      float64              `json:"confidence"`
	UsedRetrieval   bool                 `json:"used_retrieval"`
	Recommendations []*entity.ScoredItem `json:"recommendations"`
}

// StreamEnvelope is one websocket frame of a streamed answer. Fragments
// arrive with Type "fragment"; the closing frame has Type "done" and carries
// the response metadata.
type StreamEnvelope struct {
	Type            string               `json:"type"`
	Fragment        string               `json:"fragment,omitempty"`
	Category        string               `json:"category,omitempty"`
	UsedRetrieval   bool                 `json:"used_retrieval,omitempty"`
	Recommendations []*entity.ScoredItem `json:"recommendations,omitempty"`
	Error           string               `json:"error,omitempty"`
}
