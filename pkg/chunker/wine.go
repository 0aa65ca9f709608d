package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/entity"
)

// ChunkWines projects each wine record into exactly one chunk. The text is
// the concatenation of the present labeled fields joined by ". "; absent
// (zero-valued) fields are skipped. The id is deterministic from the source
// index and the normalized name, so re-ingesting the same catalogue produces
// the same ids.
func ChunkWines(records []entity.WineRecord) []*entity.KnowledgeChunk {
	chunks := make([]*entity.KnowledgeChunk, 0, len(records))

	for i, wine := range records {
		parts := make([]string, 0, 12)
		appendPart := func(label, value string) {
			if value != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", label, value))
			}
		}

		appendPart("Vino", wine.Name)
		appendPart("Tipo", wine.Style)
		appendPart("Bodega", wine.Winery)
		appendPart("Región", wine.Region)
		appendPart("Uva", wine.Grape)
		if wine.Alcohol > 0 {
			parts = append(parts, fmt.Sprintf("Graduación: %.1f%%", wine.Alcohol))
		}
		appendPart("Temperatura de servicio", wine.Temperature)
		appendPart("Crianza", wine.Aging)
		if wine.Price > 0 {
			parts = append(parts, fmt.Sprintf("Precio: %.2f€", wine.Price))
		}
		if wine.Score > 0 {
			parts = append(parts, fmt.Sprintf("Puntuación: %.0f/100", wine.Score))
		}
		appendPart("Maridaje", wine.Pairing)
		appendPart("Descripción", wine.Description)

		name := wine.Name
		if name == "" {
			name = "unknown"
		}

		chunks = append(chunks, &entity.KnowledgeChunk{
			Id:   fmt.Sprintf("wine_%d_%s", i, Slug(name)),
			Text: strings.Join(parts, ". ") + ".",
			Metadata: map[string]interface{}{
				"type":        constant.ChunkTypeWine,
				"name":        wine.Name,
				"style":       wine.Style,
				"winery":      wine.Winery,
				"region":      wine.Region,
				"grape":       wine.Grape,
				"alcohol":     wine.Alcohol,
				"temperature": wine.Temperature,
				"crianza":     wine.Aging,
				"price":       wine.Price,
				"rating":      wine.Score,
				"pairing":     wine.Pairing,
				"description": wine.Description,
			},
		})
	}

	return chunks
}

// Slug normalizes a name into a stable id fragment: lower-case, runs of
// non-alphanumerics collapsed to single underscores.
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
