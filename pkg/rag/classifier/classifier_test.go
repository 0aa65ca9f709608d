package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/pkg/llm"
)

type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.Chunk, error) {
	return nil, errors.New("not implemented")
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func testKeywords() *config.Keywords {
	return &config.Keywords{
		Romance: config.RomanceKeywords{
			Entries: []config.KeywordWeight{
				{Word: "mensaje secreto", Confidence: 0.9},
				{Word: "secreto", Confidence: 0.8},
				{Word: "mensaje", Confidence: 0.7},
				{Word: "vicky", Confidence: 0.85},
			},
			ExactMatchBonus: 0.1,
			MinConfidence:   0.75,
		},
		WineSearch:          []string{"recomienda", "maridaje", "para carne", "vino", "tinto"},
		Theory:              []string{"qué es", "qué son", "taninos", "crianza"},
		Greeting:            []string{"hola", "buenos", "gracias"},
		Styles:              []config.StyleKeyword{{Keyword: "tinto", Style: "Tinto"}},
		KnowledgeIndicators: []string{"cómo"},
		Vocabulary:          []string{"maridaje"},
	}
}

func TestFallback_WineSearchQuery(t *testing.T) {
	verdict := classifyByKeywords("vino tinto para carne", testKeywords())
	finalize(verdict)

	assert.Equal(t, constant.CategoryWineSearch, verdict.Category)
	assert.InDelta(t, 0.7, verdict.Confidence, 1e-9)
	assert.True(t, verdict.ShouldUseRetrieval)
}

func TestFallback_TheoryQueryNeverRetrieves(t *testing.T) {
	verdict := classifyByKeywords("¿qué son los taninos?", testKeywords())
	finalize(verdict)

	assert.Equal(t, constant.CategoryWineTheory, verdict.Category)
	assert.InDelta(t, 0.7, verdict.Confidence, 1e-9)
	assert.False(t, verdict.ShouldUseRetrieval)
}

func TestFallback_GreetingAndOffTopic(t *testing.T) {
	greeting := classifyByKeywords("hola, ¿qué tal?", testKeywords())
	assert.Equal(t, constant.CategoryGreeting, greeting.Category)
	assert.InDelta(t, 0.6, greeting.Confidence, 1e-9)

	offTopic := classifyByKeywords("cuéntame del fútbol", testKeywords())
	assert.Equal(t, constant.CategoryOffTopic, offTopic.Category)
	assert.InDelta(t, 0.5, offTopic.Confidence, 1e-9)
}

func TestFallback_RomanceExactMatchGetsBonus(t *testing.T) {
	verdict := classifyByKeywords("mensaje secreto", testKeywords())

	assert.Equal(t, constant.CategorySecretMessage, verdict.Category)
	// 0.9 base + 0.1 bonus, capped at 1.0.
	assert.InDelta(t, 1.0, verdict.Confidence, 1e-9)
}

func TestFallback_RomanceSubstringBoostAndGate(t *testing.T) {
	verdict := classifyByKeywords("escríbeme un mensaje para ella", testKeywords())

	require.Equal(t, constant.CategorySecretMessage, verdict.Category)
	// base 0.7 + min(0.2, 7/50) = 0.84, above the 0.75 gate.
	assert.InDelta(t, 0.84, verdict.Confidence, 1e-9)

	// A short low-confidence keyword boosts below the gate and is skipped.
	gated := testKeywords()
	gated.Romance.Entries = []config.KeywordWeight{{Word: "te", Confidence: 0.5}}
	other := classifyByKeywords("te saludo con un vino", gated)
	assert.Equal(t, constant.CategoryWineSearch, other.Category)
}

func TestFallback_RomanceOrderIsConfiguredOrder(t *testing.T) {
	// "mensaje secreto" contains both the two-word entry and its parts; the
	// first configured entry must win.
	verdict := classifyByKeywords("quiero un mensaje secreto romántico", testKeywords())

	assert.Equal(t, constant.CategorySecretMessage, verdict.Category)
	// base 0.9 + min(0.2, 15/50) capped at 1.0.
	assert.InDelta(t, 1.0, verdict.Confidence, 1e-9)
}

func TestFallback_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		verdict := classifyByKeywords("vino tinto para carne", testKeywords())
		assert.Equal(t, constant.CategoryWineSearch, verdict.Category)
		assert.InDelta(t, 0.7, verdict.Confidence, 1e-9)
	}
}

func TestFinalize_ThresholdIsStrict(t *testing.T) {
	atThreshold := classifyByKeywords("vino", testKeywords())
	atThreshold.Confidence = 0.6
	finalize(atThreshold)
	assert.False(t, atThreshold.ShouldUseRetrieval)

	above := classifyByKeywords("vino", testKeywords())
	above.Confidence = 0.61
	finalize(above)
	assert.True(t, above.ShouldUseRetrieval)
}

func TestParseVerdict(t *testing.T) {
	verdict, err := parseVerdict("Sure! {\"category\": \"wine_search\", \"confidence\": 0.92, \"reasoning\": \"pide vino\"}")
	require.NoError(t, err)
	assert.Equal(t, constant.CategoryWineSearch, verdict.Category)
	assert.InDelta(t, 0.92, verdict.Confidence, 1e-9)

	_, err = parseVerdict("no json here")
	assert.ErrorIs(t, err, errNoJSON)

	_, err = parseVerdict("{\"category\": \"WINE_HACK\", \"confidence\": 0.9}")
	assert.ErrorIs(t, err, errUnknownCategory)

	_, err = parseVerdict("{\"category\": \"GREETING\", \"confidence\": 1.4}")
	assert.ErrorIs(t, err, errConfidenceRange)
}

func TestClassify_FallsBackWhenLLMFails(t *testing.T) {
	assets, err := config.NewAssetStore("../../../assets")
	require.NoError(t, err)

	c := NewClassifier(&stubLLM{err: errors.New("provider down")}, assets, nopLogger{})

	verdict := c.Classify(context.Background(), "vino tinto para carne")
	assert.Equal(t, constant.CategoryWineSearch, verdict.Category)
	assert.True(t, verdict.ShouldUseRetrieval)
}

func TestClassify_CachesNormalizedQuery(t *testing.T) {
	assets, err := config.NewAssetStore("../../../assets")
	require.NoError(t, err)

	stub := &stubLLM{response: "{\"category\": \"GREETING\", \"confidence\": 0.95, \"reasoning\": \"saludo\"}"}
	c := NewClassifier(stub, assets, nopLogger{})

	first := c.Classify(context.Background(), "Hola Sumy")
	second := c.Classify(context.Background(), "  hola sumy ")

	assert.Equal(t, constant.CategoryGreeting, first.Category)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)
}
