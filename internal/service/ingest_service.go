package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/internal/repository/unitofwork"
	"wine-sommelier-be/pkg/chunker"
	"wine-sommelier-be/pkg/embedding"
)

type IIngestService interface {
	// IngestCatalogue chunks wine records, drops already-stored ids and
	// enqueues the rest for embedding.
	IngestCatalogue(ctx context.Context, records []entity.WineRecord) (*dto.IngestResponse, error)

	// IngestKnowledge section-chunks a free-text document and enqueues the
	// new chunks.
	IngestKnowledge(ctx context.Context, source, text string) (*dto.IngestResponse, error)

	// IngestCatalogueFile loads a JSON wine catalogue from disk and ingests
	// it. IngestKnowledgeDir does the same for every document in a
	// directory, one source per file.
	IngestCatalogueFile(ctx context.Context, path string) (*dto.IngestResponse, error)
	IngestKnowledgeDir(ctx context.Context, dir string) (*dto.IngestResponse, error)

	// Process embeds chunks and writes them to the knowledge store. The
	// consumer calls this per bus message; the offline ingest command calls
	// it directly.
	Process(ctx context.Context, chunks []*entity.KnowledgeChunk) error
}

type ingestService struct {
	uowFactory        unitofwork.RepositoryFactory
	publisherService  IPublisherService
	embeddingProvider embedding.EmbeddingProvider
	assets            *config.AssetStore
	logger            logger.ILogger
}

func NewIngestService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	embeddingProvider embedding.EmbeddingProvider,
	assets *config.AssetStore,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		uowFactory:        uowFactory,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		assets:            assets,
		logger:            log,
	}
}

func (s *ingestService) IngestCatalogue(ctx context.Context, records []entity.WineRecord) (*dto.IngestResponse, error) {
	chunks := chunker.ChunkWines(records)
	enqueued, skipped, err := s.enqueue(ctx, "catalogue", chunks)
	if err != nil {
		return nil, err
	}
	return &dto.IngestResponse{WineChunks: enqueued, Skipped: skipped}, nil
}

func (s *ingestService) IngestKnowledge(ctx context.Context, source, text string) (*dto.IngestResponse, error) {
	var chunks []*entity.KnowledgeChunk
	if chunker.HasHeadings(text) {
		sectionChunker := chunker.NewSectionChunker(s.assets.Get().Keywords.Vocabulary)
		chunks = sectionChunker.Chunk(source, text)
	} else {
		chunks = chunker.ChunkText(source, text)
	}
	enqueued, skipped, err := s.enqueue(ctx, source, chunks)
	if err != nil {
		return nil, err
	}
	return &dto.IngestResponse{KnowledgeChunks: enqueued, Skipped: skipped}, nil
}

// enqueue drops chunks whose id is already stored, then publishes the rest
// as one bus message. The existing-ids check makes re-ingestion of an
// unchanged source a no-op; ingestion is assumed single-writer.
func (s *ingestService) enqueue(ctx context.Context, source string, chunks []*entity.KnowledgeChunk) (enqueued, skipped int, err error) {
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.Id
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.KnowledgeRepository().ExistingIds(ctx, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("check existing chunk ids: %w", err)
	}

	payload := dto.IngestChunksMessage{Source: source}
	for _, chunk := range chunks {
		if existing[chunk.Id] {
			skipped++
			continue
		}
		payload.Chunks = append(payload.Chunks, dto.IngestChunkPayload{
			Id:       chunk.Id,
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		})
	}

	if len(payload.Chunks) == 0 {
		s.logger.Info("ingest", "nothing new to ingest", map[string]interface{}{
			"source":  source,
			"skipped": skipped,
		})
		return 0, skipped, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, skipped, fmt.Errorf("marshal ingest message: %w", err)
	}
	if err := s.publisherService.Publish(ctx, raw); err != nil {
		return 0, skipped, fmt.Errorf("publish ingest message: %w", err)
	}

	s.logger.Info("ingest", "chunks enqueued", map[string]interface{}{
		"source":   source,
		"enqueued": len(payload.Chunks),
		"skipped":  skipped,
	})
	return len(payload.Chunks), skipped, nil
}

func (s *ingestService) IngestCatalogueFile(ctx context.Context, path string) (*dto.IngestResponse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue %s: %w", path, err)
	}
	var records []entity.WineRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse catalogue %s: %w", path, err)
	}
	return s.IngestCatalogue(ctx, records)
}

func (s *ingestService) IngestKnowledgeDir(ctx context.Context, dir string) (*dto.IngestResponse, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read knowledge dir %s: %w", dir, err)
	}

	total := &dto.IngestResponse{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", entry.Name(), err)
		}

		source := strings.TrimSuffix(entry.Name(), ext)
		res, err := s.IngestKnowledge(ctx, source, string(raw))
		if err != nil {
			return nil, err
		}
		total.KnowledgeChunks += res.KnowledgeChunks
		total.Skipped += res.Skipped
	}
	return total, nil
}

func (s *ingestService) Process(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embeddingProvider.Generate(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", chunk.Id, err)
		}
		embeddings[i] = vector
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.KnowledgeRepository().CreateBulk(ctx, chunks, embeddings); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	s.logger.Info("ingest", "chunks stored", map[string]interface{}{
		"count": len(chunks),
	})
	return nil
}
