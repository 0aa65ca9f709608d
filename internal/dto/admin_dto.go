package dto

type ServiceStatsResponse struct {
	Service            string `json:"service"`
	Model              string `json:"model"`
	TotalConversations int64  `json:"total_conversations"`
	UniqueUsers        int64  `json:"unique_users"`
	TotalRatings       int64  `json:"total_ratings"`
	KnowledgeChunks    int64  `json:"knowledge_chunks"`
}

type IngestRequest struct {
	CataloguePath string `json:"catalogue_path" validate:"required"`
	KnowledgeDir  string `json:"knowledge_dir,omitempty"`
}

type IngestResponse struct {
	WineChunks      int `json:"wine_chunks"`
	KnowledgeChunks int `json:"knowledge_chunks"`
	Skipped         int `json:"skipped"`
}

type DebugChunkResponse struct {
	Id       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
}
