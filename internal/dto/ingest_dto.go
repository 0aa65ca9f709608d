package dto

// IngestChunkPayload is one chunk on the ingestion bus, embedding pending.
type IngestChunkPayload struct {
	Id       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
}

// IngestChunksMessage is the payload published per ingestion batch.
type IngestChunksMessage struct {
	Source string               `json:"source"`
	Chunks []IngestChunkPayload `json:"chunks"`
}
