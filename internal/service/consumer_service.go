package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/pkg/events"
	pkgNats "wine-sommelier-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the ingestion topic: each message is a batch of
// chunks to embed and store.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	ingestService IIngestService
	natsPub       *pkgNats.Publisher
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestService IIngestService,
	natsPub *pkgNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		ingestService: ingestService,
		natsPub:       natsPub,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestChunksMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal ingest message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack invalid messages to prevent infinite retry.
		msg.Ack()
		return
	}

	chunks := make([]*entity.KnowledgeChunk, 0, len(payload.Chunks))
	wineChunks, knowledgeChunks := 0, 0
	for _, c := range payload.Chunks {
		chunk := &entity.KnowledgeChunk{Id: c.Id, Text: c.Text, Metadata: c.Metadata}
		if chunk.Type() == constant.ChunkTypeWine {
			wineChunks++
		} else {
			knowledgeChunks++
		}
		chunks = append(chunks, chunk)
	}

	if err := cs.ingestService.Process(ctx, chunks); err != nil {
		cs.logger.Error("consumer", "failed to process ingest batch", map[string]interface{}{
			"source": payload.Source,
			"error":  err.Error(),
		})
		// Nack for retriable errors (embedding provider down, db hiccup).
		msg.Nack()
		return
	}

	if cs.natsPub != nil {
		event := events.NewCatalogueIngested(wineChunks, knowledgeChunks, 0)
		if err := cs.natsPub.Publish(ctx, event); err != nil {
			cs.logger.Warn("consumer", "event publish failed", map[string]interface{}{
				"event": event.EventType(),
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
