package entity

import (
	"time"

	"github.com/google/uuid"
)

// WineRating is one user's rating of one wine, 1 to 5. Ratings of 4 or above
// also add the wine to the user's favorites.
type WineRating struct {
	Id        uuid.UUID
	UserId    string
	UserName  *string
	WineName  string
	Rating    int
	Notes     string
	CreatedAt time.Time
}

// QueryClassification is the classifier verdict for a raw query.
// ShouldUseRetrieval is derived, never set independently: it is true iff
// Category is WINE_SEARCH and Confidence is strictly above the retrieval
// threshold.
type QueryClassification struct {
	Category           string  `json:"category"`
	Confidence         float64 `json:"confidence"`
	Reasoning          string  `json:"reasoning"`
	ShouldUseRetrieval bool    `json:"should_use_retrieval"`
}
