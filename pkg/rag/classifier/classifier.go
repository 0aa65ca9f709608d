package classifier

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/pkg/llm"
)

// Classifier maps a raw query to one of the fixed categories. The primary
// path is an LLM call constrained to JSON output; any failure there falls
// back to the deterministic keyword path. Classify never returns an error:
// the worst case is the conservative OFF_TOPIC verdict.
type Classifier struct {
	llmProvider llm.LLMProvider
	assets      *config.AssetStore
	cache       *gocache.Cache
	logger      logger.ILogger
}

func NewClassifier(llmProvider llm.LLMProvider, assets *config.AssetStore, log logger.ILogger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		assets:      assets,
		cache:       gocache.New(10*time.Minute, 15*time.Minute),
		logger:      log,
	}
}

// llmVerdict is the structured object the classification prompt demands.
type llmVerdict struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (c *Classifier) Classify(ctx context.Context, query string) *entity.QueryClassification {
	normalized := strings.ToLower(strings.TrimSpace(query))

	if cached, found := c.cache.Get(normalized); found {
		if classification, ok := cached.(*entity.QueryClassification); ok {
			return classification
		}
	}

	assets := c.assets.Get()

	classification, err := c.classifyWithLLM(ctx, query, assets)
	if err != nil {
		c.logger.Warn("classifier", "llm classification failed, using keyword fallback", map[string]interface{}{
			"error": err.Error(),
		})
		classification = classifyByKeywords(normalized, &assets.Keywords)
	}

	finalize(classification)
	c.cache.Set(normalized, classification, gocache.DefaultExpiration)

	c.logger.Debug("classifier", "query classified", map[string]interface{}{
		"category":             classification.Category,
		"confidence":           classification.Confidence,
		"should_use_retrieval": classification.ShouldUseRetrieval,
	})

	return classification
}

func (c *Classifier) classifyWithLLM(ctx context.Context, query string, assets *config.Assets) (*entity.QueryClassification, error) {
	response, err := c.llmProvider.Chat(ctx, []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: assets.Prompts.Classification},
		{Role: constant.ChatMessageRoleUser, Content: query},
	}, llm.WithTemperature(0.0), llm.WithJSONOutput())
	if err != nil {
		return nil, err
	}

	verdict, err := parseVerdict(response)
	if err != nil {
		return nil, err
	}

	return &entity.QueryClassification{
		Category:   verdict.Category,
		Confidence: verdict.Confidence,
		Reasoning:  verdict.Reasoning,
	}, nil
}

func parseVerdict(response string) (*llmVerdict, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, errNoJSON
	}

	var verdict llmVerdict
	if err := json.Unmarshal([]byte(jsonContent), &verdict); err != nil {
		return nil, err
	}

	verdict.Category = strings.ToUpper(strings.TrimSpace(verdict.Category))
	if !validCategory(verdict.Category) {
		return nil, errUnknownCategory
	}
	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		return nil, errConfidenceRange
	}
	return &verdict, nil
}

func validCategory(category string) bool {
	switch category {
	case constant.CategoryGreeting,
		constant.CategoryWineSearch,
		constant.CategoryWineTheory,
		constant.CategorySecretMessage,
		constant.CategoryOffTopic:
		return true
	}
	return false
}

// finalize derives the retrieval flag. It is the single place this rule
// lives, shared by the LLM and keyword paths.
func finalize(classification *entity.QueryClassification) {
	classification.ShouldUseRetrieval = classification.Category == constant.CategoryWineSearch &&
		classification.Confidence > constant.RetrievalConfidenceThreshold
}

// extractJSON pulls the outermost JSON object out of a model response that
// may carry stray prose around it.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
