package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionChunker_PrefixesSectionTitle(t *testing.T) {
	c := NewSectionChunker(nil)
	doc := "## Maridaje\n\nEl vino tinto acompaña bien las carnes rojas y los guisos de caza."

	chunks := c.Chunk("guia_maridaje", doc)

	require.Len(t, chunks, 1)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "[Maridaje] "))
	assert.Equal(t, "Maridaje", chunks[0].Metadata["section"])
	assert.Equal(t, "guia_maridaje_maridaje_0", chunks[0].Id)
}

func TestSectionChunker_UntitledPreamble(t *testing.T) {
	c := NewSectionChunker(nil)
	doc := "Introducción sin título previo.\n\n## Crianza\n\nLa crianza en barrica aporta notas de vainilla."

	chunks := c.Chunk("guia", doc)

	require.Len(t, chunks, 2)
	assert.False(t, strings.HasPrefix(chunks[0].Text, "["))
	assert.Equal(t, "", chunks[0].Metadata["section"])
	assert.Equal(t, "Crianza", chunks[1].Metadata["section"])
}

func TestSectionChunker_NumberedHeadings(t *testing.T) {
	c := NewSectionChunker(nil)
	doc := "3. La crianza en barrica\n\nEl roble americano aporta coco y vainilla al vino."

	chunks := c.Chunk("guia", doc)

	require.Len(t, chunks, 1)
	assert.Equal(t, "La crianza en barrica", chunks[0].Metadata["section"])
}

func TestSectionChunker_RespectsTokenBudget(t *testing.T) {
	c := NewSectionChunker(nil)
	c.TokenBudget = 100 // 400 chars

	paragraph := strings.Repeat("a", 299) + "."
	doc := "## Uvas\n\n" + paragraph + "\n\n" + paragraph + "\n\n" + paragraph

	chunks := c.Chunk("guia", doc)

	require.GreaterOrEqual(t, len(chunks), 2)
	for _, chunk := range chunks {
		body := strings.TrimPrefix(chunk.Text, "[Uvas] ")
		assert.LessOrEqual(t, EstimateTokens(body), c.TokenBudget)
	}
}

func TestSectionChunker_SplitsOversizedParagraph(t *testing.T) {
	c := NewSectionChunker(nil)
	c.TokenBudget = 100

	// Single paragraph over budget, made of splittable sentences.
	paragraph := strings.TrimSpace(strings.Repeat(sentence(150)+" ", 6))
	chunks := c.Chunk("guia", "## Tipos\n\n"+paragraph)

	require.GreaterOrEqual(t, len(chunks), 2)
}

func TestSectionChunker_TagsKeywordsInVocabularyOrder(t *testing.T) {
	c := NewSectionChunker([]string{"tanino", "barrica", "maridaje", "uva", "crianza", "roble"})
	doc := "## Crianza\n\nLa crianza en barrica de roble suaviza el tanino y define el maridaje con la uva tempranillo."

	chunks := c.Chunk("guia", doc)

	require.Len(t, chunks, 1)
	keywords, ok := chunks[0].Metadata["keywords"].([]string)
	require.True(t, ok)
	// Capped at five, in vocabulary order, not text order.
	assert.Equal(t, []string{"tanino", "barrica", "maridaje", "uva", "crianza"}, keywords)
}

func TestSectionChunker_DeterministicIds(t *testing.T) {
	c := NewSectionChunker(nil)
	doc := "## Maridaje\n\nCarnes rojas con tinto.\n\n## Blancos\n\nPescados con blanco joven."

	first := c.Chunk("guia", doc)
	second := c.Chunk("guia", doc)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id)
	}
}

func TestHasHeadings(t *testing.T) {
	assert.True(t, HasHeadings("## Maridaje\n\nEl cuerpo de la sección."))
	assert.True(t, HasHeadings("3. La crianza en barrica\n\nEl cuerpo de la sección."))
	assert.True(t, HasHeadings("Un preámbulo sin título.\n\n## Luego un título\n\nY su cuerpo."))
	assert.False(t, HasHeadings("Solo párrafos corridos.\n\nSin ningún título por delante."))
	assert.False(t, HasHeadings(""))
}
