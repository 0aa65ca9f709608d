package service

import (
	"context"
	"time"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/pkg/events"
	"wine-sommelier-be/pkg/llm"
	pkgNats "wine-sommelier-be/pkg/nats"
	"wine-sommelier-be/pkg/rag/prompt"
	"wine-sommelier-be/pkg/rag/stream"
)

// IQueryClassifier and IItemRetriever are the orchestrator's view of the
// rag pipeline, kept narrow for substitution in tests.
type IQueryClassifier interface {
	Classify(ctx context.Context, query string) *entity.QueryClassification
}

type IItemRetriever interface {
	Search(ctx context.Context, query string, maxResults int) ([]*entity.ScoredItem, error)
}

// persistTimeout bounds the write-back after a response (or a cancelled
// stream) completes; the request context may already be gone by then.
const persistTimeout = 5 * time.Second

// StreamResult is a streamed answer in flight. Canned categories carry the
// full Text and a nil Fragments channel; generated answers stream through
// Fragments and persist on completion.
type StreamResult struct {
	Category        string
	UsedRetrieval   bool
	Recommendations []*entity.ScoredItem
	Text            string
	Fragments       <-chan string
}

type ISommelierService interface {
	Respond(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error)
	RespondStream(ctx context.Context, req *dto.QueryRequest) (*StreamResult, error)
}

type sommelierService struct {
	classifier    IQueryClassifier
	retriever     IItemRetriever
	memoryService IMemoryService
	llmProvider   llm.LLMProvider
	assets        *config.AssetStore
	natsPub       *pkgNats.Publisher
	logger        logger.ILogger
	maxResults    int
}

func NewSommelierService(
	queryClassifier IQueryClassifier,
	itemRetriever IItemRetriever,
	memoryService IMemoryService,
	llmProvider llm.LLMProvider,
	assets *config.AssetStore,
	natsPub *pkgNats.Publisher,
	log logger.ILogger,
	maxResults int,
) ISommelierService {
	return &sommelierService{
		classifier:    queryClassifier,
		retriever:     itemRetriever,
		memoryService: memoryService,
		llmProvider:   llmProvider,
		assets:        assets,
		natsPub:       natsPub,
		logger:        log,
		maxResults:    maxResults,
	}
}

// turnPlan is the per-request state: classification verdict, retrieved
// items and the assembled chat history, or a canned text short-circuit.
// usedRetrieval reports whether a search actually succeeded, not whether
// the classifier asked for one.
type turnPlan struct {
	classification *entity.QueryClassification
	items          []*entity.ScoredItem
	messages       []llm.Message
	cannedText     string
	usedRetrieval  bool
}

func (s *sommelierService) Respond(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	plan := s.plan(ctx, req)

	text := plan.cannedText
	if text == "" {
		generated, err := s.llmProvider.Chat(ctx, plan.messages)
		if err != nil {
			s.logger.Error("sommelier", "generation failed", map[string]interface{}{
				"category": plan.classification.Category,
				"error":    err.Error(),
			})
			text = s.assets.Get().Responses.GenerationError
		} else {
			text = generated
		}
	}

	s.persistTurn(req, plan, text)

	return &dto.QueryResponse{
		Response:        text,
		Category:        plan.classification.Category,
		Confidence:      plan.classification.Confidence,
		UsedRetrieval:   plan.usedRetrieval,
		Recommendations: plan.items,
	}, nil
}

func (s *sommelierService) RespondStream(ctx context.Context, req *dto.QueryRequest) (*StreamResult, error) {
	plan := s.plan(ctx, req)

	result := &StreamResult{
		Category:        plan.classification.Category,
		UsedRetrieval:   plan.usedRetrieval,
		Recommendations: plan.items,
	}

	if plan.cannedText != "" {
		result.Text = plan.cannedText
		s.persistTurn(req, plan, plan.cannedText)
		return result, nil
	}

	chunks, err := s.llmProvider.ChatStream(ctx, plan.messages)
	if err != nil {
		s.logger.Error("sommelier", "stream start failed", map[string]interface{}{
			"category": plan.classification.Category,
			"error":    err.Error(),
		})
		result.Text = s.assets.Get().Responses.GenerationError
		s.persistTurn(req, plan, result.Text)
		return result, nil
	}

	// A cancelled stream still flushes: whatever text made it out is
	// persisted as the turn's response.
	result.Fragments = stream.Relay(ctx, chunks, func(accumulated string, streamErr error) {
		if streamErr != nil {
			s.logger.Warn("sommelier", "stream ended early", map[string]interface{}{
				"category": plan.classification.Category,
				"error":    streamErr.Error(),
			})
		}
		if accumulated == "" {
			accumulated = s.assets.Get().Responses.GenerationError
		}
		s.persistTurn(req, plan, accumulated)
	})
	return result, nil
}

// plan classifies the query, retrieves items when warranted and assembles
// the generation messages. It never fails: degraded steps fall back to
// canned text or an emptier context.
func (s *sommelierService) plan(ctx context.Context, req *dto.QueryRequest) *turnPlan {
	assets := s.assets.Get()
	classification := s.classifier.Classify(ctx, req.Query)
	plan := &turnPlan{classification: classification}

	switch classification.Category {
	case constant.CategoryGreeting:
		plan.cannedText = assets.Responses.Greeting
		return plan
	case constant.CategoryOffTopic:
		plan.cannedText = assets.Responses.OffTopic
		return plan
	}

	if classification.ShouldUseRetrieval {
		items, err := s.retriever.Search(ctx, req.Query, s.maxResults)
		if err != nil {
			s.logger.Error("sommelier", "retrieval failed", map[string]interface{}{
				"error": err.Error(),
			})
			plan.cannedText = assets.Responses.RetrievalError
			return plan
		}
		plan.items = items
		plan.usedRetrieval = true
	}

	userContext, err := s.memoryService.GetContext(ctx, req.UserId, constant.HistoryTurnLimit)
	if err != nil {
		s.logger.Warn("sommelier", "user context unavailable", map[string]interface{}{
			"user_id": req.UserId,
			"error":   err.Error(),
		})
		userContext = &entity.UserContext{UserId: req.UserId}
	}

	plan.messages = prompt.NewBuilder(&assets.Prompts).Messages(
		classification.Category,
		req.Query,
		req.UserName,
		userContext,
		plan.items,
	)
	return plan
}

// persistTurn is best-effort and detached from the request context so a
// cancelled stream still records its partial answer.
func (s *sommelierService) persistTurn(req *dto.QueryRequest, plan *turnPlan, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	recommended := make([]entity.ScoredItem, 0, len(plan.items))
	for _, item := range plan.items {
		recommended = append(recommended, *item)
	}

	s.memoryService.SaveTurn(ctx, &entity.Conversation{
		UserId:      req.UserId,
		UserName:    optional(req.UserName),
		Query:       req.Query,
		Response:    text,
		Recommended: recommended,
		SessionId:   optional(req.SessionId),
	})

	if s.natsPub != nil {
		event := events.NewTurnSaved(req.UserId, plan.classification.Category, plan.usedRetrieval)
		if err := s.natsPub.Publish(ctx, event); err != nil {
			s.logger.Warn("sommelier", "event publish failed", map[string]interface{}{
				"event": event.EventType(),
				"error": err.Error(),
			})
		}
	}
}
