package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/internal/repository/contract"
	"wine-sommelier-be/internal/repository/specification"
	"wine-sommelier-be/internal/repository/unitofwork"
)

type fakeConversationRepo struct {
	turns     []*entity.Conversation
	createErr error
}

func (f *fakeConversationRepo) Create(ctx context.Context, turn *entity.Conversation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	return f.turns, nil
}

func (f *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.turns)), nil
}

func (f *fakeConversationRepo) CountDistinctUsers(ctx context.Context) (int64, error) {
	users := map[string]bool{}
	for _, turn := range f.turns {
		users[turn.UserId] = true
	}
	return int64(len(users)), nil
}

type fakePreferenceRepo struct {
	stored         map[string]*entity.UserPreference
	favoriteCalls  int
	incrementCalls int
	favoriteErr    error
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{stored: map[string]*entity.UserPreference{}}
}

func (f *fakePreferenceRepo) FindByUserId(ctx context.Context, userId string) (*entity.UserPreference, error) {
	return f.stored[userId], nil
}

func (f *fakePreferenceRepo) UpsertPreferences(ctx context.Context, userId string, userName *string, preferences map[string]interface{}) error {
	row := f.row(userId)
	row.UserName = userName
	row.Preferences = preferences
	return nil
}

func (f *fakePreferenceRepo) IncrementInteractions(ctx context.Context, userId string, userName *string, sessionId *string) error {
	f.incrementCalls++
	f.row(userId).TotalInteractions++
	return nil
}

// AddFavorite mirrors the repository's atomic upsert: set semantics, a wine
// appears at most once.
func (f *fakePreferenceRepo) AddFavorite(ctx context.Context, userId string, wineName string) error {
	f.favoriteCalls++
	if f.favoriteErr != nil {
		return f.favoriteErr
	}
	row := f.row(userId)
	for _, name := range row.FavoriteWines {
		if name == wineName {
			return nil
		}
	}
	row.FavoriteWines = append(row.FavoriteWines, wineName)
	return nil
}

func (f *fakePreferenceRepo) row(userId string) *entity.UserPreference {
	if f.stored[userId] == nil {
		f.stored[userId] = &entity.UserPreference{UserId: userId}
	}
	return f.stored[userId]
}

type fakeRatingRepo struct {
	ratings []*entity.WineRating
}

func (f *fakeRatingRepo) Create(ctx context.Context, rating *entity.WineRating) error {
	f.ratings = append(f.ratings, rating)
	return nil
}

func (f *fakeRatingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.ratings)), nil
}

func (f *fakeRatingRepo) TopRated(ctx context.Context, userId string, limit int) ([]entity.RatedWine, error) {
	return []entity.RatedWine{}, nil
}

type fakeKnowledgeRepo struct {
	count int64
}

func (f *fakeKnowledgeRepo) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk, embeddings [][]float32) error {
	f.count += int64(len(chunks))
	return nil
}

func (f *fakeKnowledgeRepo) ExistingIds(ctx context.Context, ids []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeKnowledgeRepo) SearchSimilar(ctx context.Context, embedding []float32, limit int, filter *contract.MetadataFilter) ([]*entity.ScoredChunk, error) {
	return nil, nil
}

func (f *fakeKnowledgeRepo) Count(ctx context.Context) (int64, error) {
	return f.count, nil
}

func (f *fakeKnowledgeRepo) FindSample(ctx context.Context, limit int) ([]*entity.KnowledgeChunk, error) {
	return nil, nil
}

type fakeUow struct {
	conversations *fakeConversationRepo
	preferences   *fakePreferenceRepo
	ratings       *fakeRatingRepo
	knowledge     *fakeKnowledgeRepo
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		conversations: &fakeConversationRepo{},
		preferences:   newFakePreferenceRepo(),
		ratings:       &fakeRatingRepo{},
		knowledge:     &fakeKnowledgeRepo{},
	}
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }

func (f *fakeUow) ConversationRepository() contract.ConversationRepository { return f.conversations }
func (f *fakeUow) PreferenceRepository() contract.PreferenceRepository     { return f.preferences }
func (f *fakeUow) RatingRepository() contract.RatingRepository             { return f.ratings }
func (f *fakeUow) KnowledgeRepository() contract.KnowledgeRepository       { return f.knowledge }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newMemoryService(uow *fakeUow) IMemoryService {
	return NewMemoryService(&fakeUowFactory{uow: uow}, nil, nil, nopLogger{}, 0)
}

func TestAddRating_RejectsOutOfRange(t *testing.T) {
	uow := newFakeUow()
	svc := newMemoryService(uow)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddRating(context.Background(), &dto.RateWineRequest{
			UserId: "u1", WineName: "Pesquera", Rating: rating,
		})
		require.Error(t, err, "rating %d must be rejected", rating)
	}
	assert.Empty(t, uow.ratings.ratings, "rejected ratings never reach storage")
}

func TestAddRating_AcceptsFullRange(t *testing.T) {
	uow := newFakeUow()
	svc := newMemoryService(uow)

	for rating := 1; rating <= 5; rating++ {
		res, err := svc.AddRating(context.Background(), &dto.RateWineRequest{
			UserId: "u1", WineName: "Pesquera", Rating: rating,
		})
		require.NoError(t, err)
		assert.Equal(t, rating, res.Rating)
	}
	assert.Len(t, uow.ratings.ratings, 5)
}

func TestAddRating_HighRatingAddsFavoriteOnce(t *testing.T) {
	uow := newFakeUow()
	svc := newMemoryService(uow)

	for _, rating := range []int{4, 5} {
		res, err := svc.AddRating(context.Background(), &dto.RateWineRequest{
			UserId: "u1", WineName: "Pesquera", Rating: rating,
		})
		require.NoError(t, err)
		assert.True(t, res.AddedFavorite)
	}

	favorites := uow.preferences.stored["u1"].FavoriteWines
	assert.Equal(t, []string{"Pesquera"}, favorites, "repeat high ratings keep set semantics")
}

func TestAddRating_LowRatingSkipsFavorite(t *testing.T) {
	uow := newFakeUow()
	svc := newMemoryService(uow)

	res, err := svc.AddRating(context.Background(), &dto.RateWineRequest{
		UserId: "u1", WineName: "Vinagre", Rating: 2,
	})

	require.NoError(t, err)
	assert.False(t, res.AddedFavorite)
	assert.Zero(t, uow.preferences.favoriteCalls)
}

func TestAddRating_FavoriteFailureStillRecordsRating(t *testing.T) {
	uow := newFakeUow()
	uow.preferences.favoriteErr = errors.New("preferences down")
	svc := newMemoryService(uow)

	res, err := svc.AddRating(context.Background(), &dto.RateWineRequest{
		UserId: "u1", WineName: "Pesquera", Rating: 5,
	})

	require.NoError(t, err)
	assert.False(t, res.AddedFavorite)
	assert.Len(t, uow.ratings.ratings, 1)
}

func TestGetContext_UnknownUserReturnsEmptyDefaults(t *testing.T) {
	svc := newMemoryService(newFakeUow())

	userContext, err := svc.GetContext(context.Background(), "nunca-visto", 5)

	require.NoError(t, err)
	assert.Equal(t, "nunca-visto", userContext.UserId)
	assert.Empty(t, userContext.Recent)
	assert.NotNil(t, userContext.Preferences)
	assert.Empty(t, userContext.Preferences)
	assert.NotNil(t, userContext.FavoriteWines)
	assert.Empty(t, userContext.FavoriteWines)
	assert.Empty(t, userContext.TopRated)
}

func TestGetContext_MergesStoredPreferences(t *testing.T) {
	uow := newFakeUow()
	name := "María"
	uow.preferences.stored["u1"] = &entity.UserPreference{
		UserId:        "u1",
		UserName:      &name,
		Preferences:   map[string]interface{}{"estilo": "tinto"},
		FavoriteWines: []string{"Pesquera"},
	}
	svc := newMemoryService(uow)

	userContext, err := svc.GetContext(context.Background(), "u1", 5)

	require.NoError(t, err)
	require.NotNil(t, userContext.UserName)
	assert.Equal(t, "María", *userContext.UserName)
	assert.Equal(t, "tinto", userContext.Preferences["estilo"])
	assert.Equal(t, []string{"Pesquera"}, userContext.FavoriteWines)
}

func TestSaveTurn_SwallowsStorageFailure(t *testing.T) {
	uow := newFakeUow()
	uow.conversations.createErr = errors.New("db down")
	svc := newMemoryService(uow)

	svc.SaveTurn(context.Background(), &entity.Conversation{UserId: "u1", Query: "hola", Response: "hola"})

	assert.Empty(t, uow.conversations.turns)
	assert.Zero(t, uow.preferences.incrementCalls, "a failed insert skips the counter bump")
}

func TestSaveTurn_BumpsInteractionCounter(t *testing.T) {
	uow := newFakeUow()
	svc := newMemoryService(uow)

	svc.SaveTurn(context.Background(), &entity.Conversation{UserId: "u1", Query: "hola", Response: "hola"})

	require.Len(t, uow.conversations.turns, 1)
	assert.Equal(t, 1, uow.preferences.incrementCalls)
	assert.Equal(t, int64(1), uow.preferences.stored["u1"].TotalInteractions)
}

func TestStats_CountsAllStores(t *testing.T) {
	uow := newFakeUow()
	uow.conversations.turns = []*entity.Conversation{
		{UserId: "u1"}, {UserId: "u1"}, {UserId: "u2"},
	}
	uow.ratings.ratings = []*entity.WineRating{{UserId: "u1"}}
	uow.knowledge.count = 7
	svc := newMemoryService(uow)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalConversations)
	assert.Equal(t, int64(2), stats.UniqueUsers)
	assert.Equal(t, int64(1), stats.TotalRatings)
	assert.Equal(t, int64(7), stats.KnowledgeChunks)
}
