package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/dto"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/pkg/llm"
)

type fakeClassifier struct {
	verdict *entity.QueryClassification
}

func (f *fakeClassifier) Classify(ctx context.Context, query string) *entity.QueryClassification {
	return f.verdict
}

type fakeRetriever struct {
	items []*entity.ScoredItem
	err   error
	calls int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, maxResults int) ([]*entity.ScoredItem, error) {
	f.calls++
	return f.items, f.err
}

type fakeMemory struct {
	mu     sync.Mutex
	saved  []*entity.Conversation
	signal chan struct{}
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{signal: make(chan struct{}, 4)}
}

func (f *fakeMemory) SaveTurn(ctx context.Context, turn *entity.Conversation) {
	f.mu.Lock()
	f.saved = append(f.saved, turn)
	f.mu.Unlock()
	f.signal <- struct{}{}
}

func (f *fakeMemory) GetContext(ctx context.Context, userId string, limit int) (*entity.UserContext, error) {
	return &entity.UserContext{UserId: userId}, nil
}

func (f *fakeMemory) UpsertPreferences(ctx context.Context, req *dto.UpsertPreferencesRequest) error {
	return nil
}

func (f *fakeMemory) AddRating(ctx context.Context, req *dto.RateWineRequest) (*dto.RateWineResponse, error) {
	return nil, nil
}

func (f *fakeMemory) Stats(ctx context.Context) (*dto.ServiceStatsResponse, error) {
	return nil, nil
}

func (f *fakeMemory) lastSaved(t *testing.T) *entity.Conversation {
	t.Helper()
	select {
	case <-f.signal:
	case <-time.After(time.Second):
		t.Fatal("no turn was persisted")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[len(f.saved)-1]
}

type fakeLLM struct {
	response  string
	err       error
	fragments []string
	chatCalls int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.chatCalls++
	return f.response, f.err
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan llm.Chunk, len(f.fragments))
	for _, fragment := range f.fragments {
		out <- llm.Chunk{Content: fragment}
	}
	close(out)
	return out, nil
}

func (f *fakeLLM) Generate(ctx context.Context, promptText string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, nil, opts...)
}

func testAssetStore(t *testing.T) *config.AssetStore {
	t.Helper()
	assets, err := config.NewAssetStore("../../assets")
	require.NoError(t, err)
	return assets
}

func verdict(category string, confidence float64) *entity.QueryClassification {
	return &entity.QueryClassification{
		Category:           category,
		Confidence:         confidence,
		ShouldUseRetrieval: category == constant.CategoryWineSearch && confidence > constant.RetrievalConfidenceThreshold,
	}
}

func newService(
	t *testing.T,
	c IQueryClassifier,
	r IItemRetriever,
	m IMemoryService,
	provider llm.LLMProvider,
) ISommelierService {
	t.Helper()
	return NewSommelierService(c, r, m, provider, testAssetStore(t), nil, nopLogger{}, 5)
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func TestRespond_GreetingSkipsGenerationButPersists(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeLLM{response: "nunca llamado"}
	retr := &fakeRetriever{}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategoryGreeting, 0.9)}, retr, memory, provider)

	res, err := svc.Respond(context.Background(), &dto.QueryRequest{Query: "hola", UserId: "u1"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Response)
	assert.Equal(t, constant.CategoryGreeting, res.Category)
	assert.Zero(t, provider.chatCalls, "canned categories never hit the model")
	assert.Zero(t, retr.calls)

	turn := memory.lastSaved(t)
	assert.Equal(t, "hola", turn.Query)
	assert.Equal(t, res.Response, turn.Response)
}

func TestRespond_WineSearchRetrievesAndGenerates(t *testing.T) {
	memory := newFakeMemory()
	items := []*entity.ScoredItem{
		{Kind: entity.ItemKindWine, Wine: &entity.WineRecord{Name: "Pesquera"}, Relevance: 0.9},
	}
	retr := &fakeRetriever{items: items}
	provider := &fakeLLM{response: "Te recomiendo el Pesquera."}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategoryWineSearch, 0.8)}, retr, memory, provider)

	res, err := svc.Respond(context.Background(), &dto.QueryRequest{Query: "un tinto potente", UserId: "u1"})

	require.NoError(t, err)
	assert.Equal(t, "Te recomiendo el Pesquera.", res.Response)
	assert.True(t, res.UsedRetrieval)
	assert.Equal(t, 1, retr.calls)
	require.Len(t, res.Recommendations, 1)

	turn := memory.lastSaved(t)
	require.Len(t, turn.Recommended, 1)
	assert.Equal(t, "Pesquera", turn.Recommended[0].Wine.Name)
}

func TestRespond_LowConfidenceSearchSkipsRetrieval(t *testing.T) {
	memory := newFakeMemory()
	retr := &fakeRetriever{}
	provider := &fakeLLM{response: "una sugerencia general"}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategoryWineSearch, 0.55)}, retr, memory, provider)

	res, err := svc.Respond(context.Background(), &dto.QueryRequest{Query: "algo de vino", UserId: "u1"})

	require.NoError(t, err)
	assert.Zero(t, retr.calls, "confidence at or below the threshold keeps retrieval off")
	assert.False(t, res.UsedRetrieval)
	memory.lastSaved(t)
}

func TestRespond_EmptyRetrievalStillAnswers(t *testing.T) {
	memory := newFakeMemory()
	retr := &fakeRetriever{items: []*entity.ScoredItem{}}
	provider := &fakeLLM{response: "Sin coincidencias, pero prueba un Rioja."}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategoryWineSearch, 0.8)}, retr, memory, provider)

	res, err := svc.Respond(context.Background(), &dto.QueryRequest{Query: "vino de marte", UserId: "u1"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Response)
	assert.Empty(t, res.Recommendations)
	memory.lastSaved(t)
}

func TestRespond_GenerationFailureFallsBackAndPersists(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeLLM{err: errors.New("model down")}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategoryWineTheory, 0.8)}, &fakeRetriever{}, memory, provider)

	res, err := svc.Respond(context.Background(), &dto.QueryRequest{Query: "¿qué son los taninos?", UserId: "u1"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Response, "generation failure degrades to a canned apology")

	turn := memory.lastSaved(t)
	assert.Equal(t, res.Response, turn.Response)
}

func TestRespond_RetrievalFailureDegradesToCannedText(t *testing.T) {
	memory := newFakeMemory()
	retr := &fakeRetriever{err: errors.New("store down")}
	provider := &fakeLLM{response: "nunca llamado"}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategoryWineSearch, 0.9)}, retr, memory, provider)

	res, err := svc.Respond(context.Background(), &dto.QueryRequest{Query: "un tinto", UserId: "u1"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Response)
	assert.Zero(t, provider.chatCalls)
	assert.False(t, res.UsedRetrieval, "a failed search never counts as retrieval")
	assert.Empty(t, res.Recommendations)
	memory.lastSaved(t)
}

func TestRespond_SecretMessageAlwaysGenerated(t *testing.T) {
	memory := newFakeMemory()
	retr := &fakeRetriever{}
	provider := &fakeLLM{response: "Un brindis por Vicky."}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategorySecretMessage, 0.95)}, retr, memory, provider)

	res, err := svc.Respond(context.Background(), &dto.QueryRequest{Query: "mensaje secreto", UserId: "u1", UserName: "Pedro"})

	require.NoError(t, err)
	assert.Equal(t, 1, provider.chatCalls, "secret messages are generated, never canned")
	assert.Zero(t, retr.calls)
	assert.Equal(t, "Un brindis por Vicky.", res.Response)
	memory.lastSaved(t)
}

func TestRespondStream_FragmentsAndPersistence(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeLLM{fragments: []string{"Prueba ", "un ", "Albariño."}}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategoryWineTheory, 0.8)}, &fakeRetriever{}, memory, provider)

	result, err := svc.RespondStream(context.Background(), &dto.QueryRequest{Query: "¿qué blanco va con pescado?", UserId: "u1"})

	require.NoError(t, err)
	require.NotNil(t, result.Fragments)

	var got string
	for fragment := range result.Fragments {
		got += fragment
	}
	assert.Equal(t, "Prueba un Albariño.", got)

	turn := memory.lastSaved(t)
	assert.Equal(t, "Prueba un Albariño.", turn.Response)
}

func TestRespondStream_CannedCategoryReturnsTextDirectly(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeLLM{}
	svc := newService(t, &fakeClassifier{verdict: verdict(constant.CategoryOffTopic, 0.5)}, &fakeRetriever{}, memory, provider)

	result, err := svc.RespondStream(context.Background(), &dto.QueryRequest{Query: "háblame de fútbol", UserId: "u1"})

	require.NoError(t, err)
	assert.Nil(t, result.Fragments)
	assert.NotEmpty(t, result.Text)
	memory.lastSaved(t)
}
