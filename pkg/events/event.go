package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "turn.saved").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type codes. The NATS subject is "sommelier.<type>".
const (
	TypeTurnSaved         = "turn.saved"
	TypeWineRated         = "wine.rated"
	TypeCatalogueIngested = "catalogue.ingested"
)

// BaseEvent is the common implementation all domain events share.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewTurnSaved is emitted after a conversation turn is persisted.
func NewTurnSaved(userId, category string, usedRetrieval bool) Event {
	return BaseEvent{
		Type: TypeTurnSaved,
		Data: map[string]interface{}{
			"user_id":        userId,
			"category":       category,
			"used_retrieval": usedRetrieval,
		},
		OccurredAt: time.Now(),
	}
}

// NewWineRated is emitted after a rating is stored.
func NewWineRated(userId, wineName string, rating int) Event {
	return BaseEvent{
		Type: TypeWineRated,
		Data: map[string]interface{}{
			"user_id":   userId,
			"wine_name": wineName,
			"rating":    rating,
		},
		OccurredAt: time.Now(),
	}
}

// NewCatalogueIngested is emitted after an ingestion run completes.
func NewCatalogueIngested(wineChunks, knowledgeChunks, skipped int) Event {
	return BaseEvent{
		Type: TypeCatalogueIngested,
		Data: map[string]interface{}{
			"wine_chunks":      wineChunks,
			"knowledge_chunks": knowledgeChunks,
			"skipped":          skipped,
		},
		OccurredAt: time.Now(),
	}
}
