package chunker

import (
	"testing"

	"wine-sommelier-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWines_OneChunkPerRecord(t *testing.T) {
	records := []entity.WineRecord{
		{Name: "Viña Ardanza", Style: "Tinto", Region: "Rioja", Grape: "Tempranillo", Price: 28.5},
		{Name: "Martín Códax", Style: "Blanco", Region: "Rías Baixas", Grape: "Albariño"},
	}

	chunks := ChunkWines(records)
	require.Len(t, chunks, 2)

	assert.Equal(t, "wine_0_viña_ardanza", chunks[0].Id)
	assert.Equal(t, "wine_1_martín_códax", chunks[1].Id)
	assert.Equal(t, "wine", chunks[0].Type())
	assert.Contains(t, chunks[0].Text, "Vino: Viña Ardanza")
	assert.Contains(t, chunks[0].Text, "Precio: 28.50€")
}

func TestChunkWines_SkipsAbsentFields(t *testing.T) {
	chunks := ChunkWines([]entity.WineRecord{{Name: "Solo Nombre"}})
	require.Len(t, chunks, 1)

	assert.Equal(t, "Vino: Solo Nombre.", chunks[0].Text)
	assert.NotContains(t, chunks[0].Text, "Precio")
	assert.NotContains(t, chunks[0].Text, "Graduación")
}

func TestChunkWines_DeterministicIds(t *testing.T) {
	records := []entity.WineRecord{{Name: "Pazo de Señoráns", Style: "Blanco"}}

	first := ChunkWines(records)
	second := ChunkWines(records)

	require.Len(t, first, 1)
	assert.Equal(t, first[0].Id, second[0].Id)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"Viña Ardanza", "viña_ardanza"},
		{"  Casa -- Grande  ", "casa_grande"},
		{"UPPER case 123", "upper_case_123"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.out, Slug(tc.in))
	}
}
