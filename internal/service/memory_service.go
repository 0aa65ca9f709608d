package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/internal/pkg/serverutils"
	"wine-sommelier-be/internal/repository/specification"
	"wine-sommelier-be/internal/repository/unitofwork"
	"wine-sommelier-be/pkg/events"
	pkgNats "wine-sommelier-be/pkg/nats"
)

// FavoriteRatingThreshold: ratings at or above this add the wine to the
// user's favorites.
const FavoriteRatingThreshold = 4

type IMemoryService interface {
	// SaveTurn persists a conversation turn and bumps the interaction
	// counter. Durability is best-effort: failures are logged, never
	// returned, so a storage outage cannot break the response path.
	SaveTurn(ctx context.Context, turn *entity.Conversation)

	// GetContext assembles the per-user generation context. Unknown users
	// get empty defaults, never an error.
	GetContext(ctx context.Context, userId string, limit int) (*entity.UserContext, error)

	UpsertPreferences(ctx context.Context, req *dto.UpsertPreferencesRequest) error
	AddRating(ctx context.Context, req *dto.RateWineRequest) (*dto.RateWineResponse, error)
	Stats(ctx context.Context) (*dto.ServiceStatsResponse, error)
}

type memoryService struct {
	uowFactory unitofwork.RepositoryFactory
	rdb        *redis.Client
	natsPub    *pkgNats.Publisher
	logger     logger.ILogger
	cacheTTL   time.Duration
}

func NewMemoryService(
	uowFactory unitofwork.RepositoryFactory,
	rdb *redis.Client,
	natsPub *pkgNats.Publisher,
	log logger.ILogger,
	cacheTTL time.Duration,
) IMemoryService {
	return &memoryService{
		uowFactory: uowFactory,
		rdb:        rdb,
		natsPub:    natsPub,
		logger:     log,
		cacheTTL:   cacheTTL,
	}
}

func contextCacheKey(userId string) string {
	return "sommelier:context:" + userId
}

func (s *memoryService) SaveTurn(ctx context.Context, turn *entity.Conversation) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// The turn insert and the counter bump are independent statements: a
	// failure between them leaves the counter stale but the turn intact.
	if err := uow.ConversationRepository().Create(ctx, turn); err != nil {
		s.logger.Error("memory", "failed to save conversation turn", map[string]interface{}{
			"user_id": turn.UserId,
			"error":   err.Error(),
		})
		return
	}

	if err := uow.PreferenceRepository().IncrementInteractions(ctx, turn.UserId, turn.UserName, turn.SessionId); err != nil {
		s.logger.Error("memory", "failed to increment interactions", map[string]interface{}{
			"user_id": turn.UserId,
			"error":   err.Error(),
		})
	}

	s.invalidateContext(ctx, turn.UserId)
}

func (s *memoryService) GetContext(ctx context.Context, userId string, limit int) (*entity.UserContext, error) {
	if limit <= 0 {
		limit = constant.ContextTurnLimit
	}

	if cached := s.cachedContext(ctx, userId); cached != nil {
		return cached, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	turns, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{Limit: limit},
	)
	if err != nil {
		return nil, fmt.Errorf("load recent turns: %w", err)
	}

	preference, err := uow.PreferenceRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	topRated, err := uow.RatingRepository().TopRated(ctx, userId, constant.TopRatedLimit)
	if err != nil {
		return nil, fmt.Errorf("load top rated: %w", err)
	}

	userContext := &entity.UserContext{
		UserId:        userId,
		Recent:        make([]entity.Conversation, 0, len(turns)),
		Preferences:   map[string]interface{}{},
		FavoriteWines: []string{},
		TopRated:      topRated,
	}
	for _, turn := range turns {
		userContext.Recent = append(userContext.Recent, *turn)
	}
	if preference != nil {
		userContext.UserName = preference.UserName
		if preference.Preferences != nil {
			userContext.Preferences = preference.Preferences
		}
		if preference.FavoriteWines != nil {
			userContext.FavoriteWines = preference.FavoriteWines
		}
	}

	s.cacheContext(ctx, userId, userContext)
	return userContext, nil
}

func (s *memoryService) UpsertPreferences(ctx context.Context, req *dto.UpsertPreferencesRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.PreferenceRepository().UpsertPreferences(ctx, req.UserId, optional(req.UserName), req.Preferences); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}

	s.invalidateContext(ctx, req.UserId)
	return nil
}

func (s *memoryService) AddRating(ctx context.Context, req *dto.RateWineRequest) (*dto.RateWineResponse, error) {
	// Out-of-range ratings are the caller's problem, unlike turn saves.
	if req.Rating < 1 || req.Rating > 5 {
		return nil, serverutils.BadRequest("rating must be between 1 and 5, got %d", req.Rating)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	rating := &entity.WineRating{
		UserId:   req.UserId,
		UserName: optional(req.UserName),
		WineName: req.WineName,
		Rating:   req.Rating,
		Notes:    req.Notes,
	}
	if err := uow.RatingRepository().Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("save rating: %w", err)
	}

	addedFavorite := false
	if req.Rating >= FavoriteRatingThreshold {
		if err := uow.PreferenceRepository().AddFavorite(ctx, req.UserId, req.WineName); err != nil {
			s.logger.Error("memory", "failed to add favorite", map[string]interface{}{
				"user_id":   req.UserId,
				"wine_name": req.WineName,
				"error":     err.Error(),
			})
		} else {
			addedFavorite = true
		}
	}

	s.invalidateContext(ctx, req.UserId)
	s.publish(ctx, events.NewWineRated(req.UserId, req.WineName, req.Rating))

	return &dto.RateWineResponse{
		WineName:      req.WineName,
		Rating:        req.Rating,
		AddedFavorite: addedFavorite,
	}, nil
}

func (s *memoryService) Stats(ctx context.Context) (*dto.ServiceStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count conversations: %w", err)
	}
	users, err := uow.ConversationRepository().CountDistinctUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	ratings, err := uow.RatingRepository().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}
	chunks, err := uow.KnowledgeRepository().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	return &dto.ServiceStatsResponse{
		TotalConversations: conversations,
		UniqueUsers:        users,
		TotalRatings:       ratings,
		KnowledgeChunks:    chunks,
	}, nil
}

// --- cache and event helpers; all best-effort ---

func (s *memoryService) cachedContext(ctx context.Context, userId string) *entity.UserContext {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, contextCacheKey(userId)).Bytes()
	if err != nil {
		return nil
	}
	var userContext entity.UserContext
	if err := json.Unmarshal(raw, &userContext); err != nil {
		return nil
	}
	return &userContext
}

func (s *memoryService) cacheContext(ctx context.Context, userId string, userContext *entity.UserContext) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(userContext)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, contextCacheKey(userId), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("memory", "context cache write failed", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}
}

func (s *memoryService) invalidateContext(ctx context.Context, userId string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, contextCacheKey(userId)).Err(); err != nil {
		s.logger.Debug("memory", "context cache invalidation failed", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}
}

func (s *memoryService) publish(ctx context.Context, event events.Event) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.logger.Warn("memory", "event publish failed", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
