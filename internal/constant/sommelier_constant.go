package constant

// Query categories produced by the classifier. The category decides the
// response strategy: canned reply, retrieval + generation, or generation only.
const (
	CategoryGreeting      = "GREETING"
	CategoryWineSearch    = "WINE_SEARCH"
	CategoryWineTheory    = "WINE_THEORY"
	CategorySecretMessage = "SECRET_MESSAGE"
	CategoryOffTopic      = "OFF_TOPIC"
)

// RetrievalConfidenceThreshold gates retrieval: only WINE_SEARCH queries
// classified strictly above this confidence trigger a knowledge search.
const RetrievalConfidenceThreshold = 0.6

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"
)

// Chunk metadata types. Every indexed chunk carries exactly one of these
// under the "type" metadata key.
const (
	ChunkTypeWine      = "wine"
	ChunkTypeKnowledge = "knowledge"
)

const (
	// HistoryTurnLimit caps how many prior turns are injected into the
	// generation context.
	HistoryTurnLimit = 8

	// ContextTurnLimit is the default number of recent turns returned by
	// the memory store's user-context read.
	ContextTurnLimit = 5

	// TopRatedLimit caps the aggregated top-rated wines in user context.
	TopRatedLimit = 3
)

const ServiceName = "sommelier-service"
