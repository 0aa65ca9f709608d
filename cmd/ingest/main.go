package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/internal/repository/contract"
	"wine-sommelier-be/internal/repository/unitofwork"
	"wine-sommelier-be/pkg/chunker"
	"wine-sommelier-be/pkg/database"
	"wine-sommelier-be/pkg/embedding"
)

// Offline ingestion: chunks a wine catalogue and knowledge documents,
// embeds everything synchronously and writes straight to the store. Used
// to bootstrap a fresh database without running the API server.
func main() {
	cataloguePath := flag.String("catalogue", "", "path to the JSON wine catalogue")
	knowledgeDir := flag.String("knowledge", "", "directory of .txt/.md knowledge documents")
	flag.Parse()

	if *cataloguePath == "" && *knowledgeDir == "" {
		color.Red("Nothing to do: pass -catalogue and/or -knowledge")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := config.Load()

	db, err := database.NewGormDB(cfg.Database.Connection, cfg.App.Environment == "production")
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	assets, err := config.NewAssetStore(cfg.Assets.Dir)
	if err != nil {
		color.Red("Failed to load assets: %v", err)
		os.Exit(1)
	}

	embedder, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
	)

	if err != nil {
		color.Red("Failed to initialize embedding provider: %v", err)
		os.Exit(1)
	}
	color.Cyan("Embedding with %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	repo := unitofwork.NewUnitOfWork(db).KnowledgeRepository()
	loader := ingestRun{repo: repo, embedder: embedder, vocabulary: assets.Get().Keywords.Vocabulary}

	if *cataloguePath != "" {
		stored, skipped, err := loader.catalogue(ctx, *cataloguePath)
		if err != nil {
			color.Red("Catalogue ingestion failed: %v", err)
			os.Exit(1)
		}
		color.Green("Catalogue: %d chunks stored, %d already present", stored, skipped)
	}

	if *knowledgeDir != "" {
		stored, skipped, err := loader.knowledge(ctx, *knowledgeDir)
		if err != nil {
			color.Red("Knowledge ingestion failed: %v", err)
			os.Exit(1)
		}
		color.Green("Knowledge: %d chunks stored, %d already present", stored, skipped)
	}

	color.Cyan("Done")
}

type ingestRun struct {
	repo       contract.KnowledgeRepository
	embedder   embedding.EmbeddingProvider
	vocabulary []string
}

func (r ingestRun) catalogue(ctx context.Context, path string) (stored, skipped int, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	var records []entity.WineRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return 0, 0, err
	}
	return r.store(ctx, chunker.ChunkWines(records))
}

func (r ingestRun) knowledge(ctx context.Context, dir string) (stored, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, err
	}

	sectionChunker := chunker.NewSectionChunker(r.vocabulary)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".txt" && ext != ".md") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return stored, skipped, err
		}
		source := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		chunks := chunker.ChunkText(source, string(raw))
		if chunker.HasHeadings(string(raw)) {
			chunks = sectionChunker.Chunk(source, string(raw))
		}
		s, k, err := r.store(ctx, chunks)
		stored += s
		skipped += k
		if err != nil {
			return stored, skipped, err
		}
	}
	return stored, skipped, nil
}

func (r ingestRun) store(ctx context.Context, chunks []*entity.KnowledgeChunk) (stored, skipped int, err error) {
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.Id
	}
	existing, err := r.repo.ExistingIds(ctx, ids)
	if err != nil {
		return 0, 0, err
	}

	fresh := make([]*entity.KnowledgeChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if existing[chunk.Id] {
			skipped++
			continue
		}
		fresh = append(fresh, chunk)
	}
	if len(fresh) == 0 {
		return 0, skipped, nil
	}

	embeddings := make([][]float32, len(fresh))
	for i, chunk := range fresh {
		vector, err := r.embedder.Generate(ctx, chunk.Text)
		if err != nil {
			return 0, skipped, err
		}
		embeddings[i] = vector
	}

	if err := r.repo.CreateBulk(ctx, fresh, embeddings); err != nil {
		return 0, skipped, err
	}
	return len(fresh), skipped, nil
}
