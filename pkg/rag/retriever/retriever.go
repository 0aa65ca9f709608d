package retriever

import (
	"context"
	"fmt"
	"strings"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/internal/repository/contract"
	"wine-sommelier-be/pkg/embedding"
)

// Retriever turns a raw query into ranked wine or knowledge items. Keyword
// scans decide the metadata filter, a single embedding call feeds the vector
// search, and store order is preserved in the result.
type Retriever struct {
	knowledgeRepository contract.KnowledgeRepository
	embeddingProvider   embedding.EmbeddingProvider
	assets              *config.AssetStore
	logger              logger.ILogger
}

func NewRetriever(
	knowledgeRepository contract.KnowledgeRepository,
	embeddingProvider embedding.EmbeddingProvider,
	assets *config.AssetStore,
	log logger.ILogger,
) *Retriever {
	return &Retriever{
		knowledgeRepository: knowledgeRepository,
		embeddingProvider:   embeddingProvider,
		assets:              assets,
		logger:              log,
	}
}

func (r *Retriever) Search(ctx context.Context, query string, maxResults int) ([]*entity.ScoredItem, error) {
	if maxResults <= 0 {
		return []*entity.ScoredItem{}, nil
	}

	filter := pickFilter(strings.ToLower(query), &r.assets.Get().Keywords)

	queryEmbedding, err := r.embeddingProvider.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// A metadata filter narrows true recall, so overfetch and truncate.
	limit := maxResults
	if filter != nil {
		limit = 2 * maxResults
	}

	scored, err := r.knowledgeRepository.SearchSimilar(ctx, queryEmbedding, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	items := make([]*entity.ScoredItem, 0, len(scored))
	for _, s := range scored {
		items = append(items, toScoredItem(s))
	}

	r.logger.Debug("retriever", "search completed", map[string]interface{}{
		"results":  len(items),
		"filtered": filter != nil,
	})

	return items, nil
}

// pickFilter runs the two independent keyword scans. A knowledge indicator
// takes precedence over a style keyword; within each dictionary the first
// match in configured order wins.
func pickFilter(normalized string, keywords *config.Keywords) *contract.MetadataFilter {
	for _, indicator := range keywords.KnowledgeIndicators {
		if strings.Contains(normalized, strings.ToLower(indicator)) {
			return &contract.MetadataFilter{Field: "type", Value: constant.ChunkTypeKnowledge}
		}
	}
	for _, style := range keywords.Styles {
		if strings.Contains(normalized, strings.ToLower(style.Keyword)) {
			return &contract.MetadataFilter{Field: "style", Value: style.Style}
		}
	}
	return nil
}

// toScoredItem maps a stored chunk onto the tagged result variant. Relevance
// is 1 - distance, unclamped.
func toScoredItem(scored *entity.ScoredChunk) *entity.ScoredItem {
	item := &entity.ScoredItem{Relevance: 1 - scored.Distance}
	meta := scored.Chunk.Metadata

	if scored.Chunk.Type() == constant.ChunkTypeWine {
		item.Kind = entity.ItemKindWine
		item.Wine = &entity.WineRecord{
			Name:        metaString(meta, "name"),
			Style:       metaString(meta, "style"),
			Winery:      metaString(meta, "winery"),
			Region:      metaString(meta, "region"),
			Grape:       metaString(meta, "grape"),
			Alcohol:     metaFloat(meta, "alcohol"),
			Temperature: metaString(meta, "temperature"),
			Aging:       metaString(meta, "crianza"),
			Price:       metaFloat(meta, "price"),
			Score:       metaFloat(meta, "rating"),
			Pairing:     metaString(meta, "pairing"),
			Description: metaString(meta, "description"),
		}
		return item
	}

	item.Kind = entity.ItemKindKnowledge
	item.Excerpt = &entity.KnowledgeExcerpt{
		Section:  metaString(meta, "section"),
		Keywords: metaStrings(meta, "keywords"),
		Text:     scored.Chunk.Text,
	}
	return item
}

func metaString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaFloat(meta map[string]interface{}, key string) float64 {
	switch v := meta[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// metaStrings handles both native string slices and the []interface{} shape
// JSONB metadata decodes into.
func metaStrings(meta map[string]interface{}, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
