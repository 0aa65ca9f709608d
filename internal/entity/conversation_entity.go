package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a single persisted turn: what the user asked, what the
// sommelier answered and which items were recommended. Turns are append-only;
// a row is never updated after insert.
type Conversation struct {
	Id          uuid.UUID
	UserId      string
	UserName    *string
	Query       string
	Response    string
	Recommended []ScoredItem
	SessionId   *string
	CreatedAt   time.Time
}
