package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/entity"
)

const (
	// MinParagraphLen: shorter paragraphs are discarded as noise.
	MinParagraphLen = 100
	// MaxChunkLen: longer paragraphs are re-split on sentence boundaries.
	MaxChunkLen = 800
)

var (
	paragraphSplitter = regexp.MustCompile(`\n\s*\n`)
	sentenceSplitter  = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+)`)
)

// ChunkText splits free text into bounded chunks. Paragraphs are the unit of
// meaning: blank-line separated, dropped below MinParagraphLen, sentence-split
// and greedily repacked above MaxChunkLen. The trailing partial accumulation
// is always flushed, even when under the limit.
func ChunkText(source, text string) []*entity.KnowledgeChunk {
	var chunks []*entity.KnowledgeChunk

	idx := 0
	emit := func(body string) {
		chunks = append(chunks, &entity.KnowledgeChunk{
			Id:   fmt.Sprintf("%s_%d", Slug(source), idx),
			Text: body,
			Metadata: map[string]interface{}{
				"type":   constant.ChunkTypeKnowledge,
				"source": source,
			},
		})
		idx++
	}

	for _, paragraph := range paragraphSplitter.Split(text, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if len(paragraph) < MinParagraphLen {
			continue
		}
		if len(paragraph) <= MaxChunkLen {
			emit(paragraph)
			continue
		}
		for _, sub := range packSentences(splitSentences(paragraph), MaxChunkLen, lenOf) {
			emit(sub)
		}
	}

	return chunks
}

// splitSentences cuts text on sentence-ending punctuation, preserving order.
// Text with no terminal punctuation comes back as a single sentence.
func splitSentences(text string) []string {
	sentences := sentenceSplitter.FindAllString(text, -1)
	if len(sentences) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	return sentences
}

func lenOf(text string) int { return len(text) }

// packSentences greedily accumulates sentences into chunks whose size (per
// the given measure) stays within limit, preserving sentence order. A single
// sentence over the limit becomes its own chunk; there is no smaller unit to
// split on.
func packSentences(sentences []string, limit int, measure func(string) int) []string {
	var packed []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			packed = append(packed, current.String())
			current.Reset()
		}
	}

	for _, sentence := range sentences {
		if sentence == "" {
			continue
		}
		candidate := sentence
		if current.Len() > 0 {
			candidate = current.String() + " " + sentence
		}
		if measure(candidate) > limit {
			flush()
			if measure(sentence) > limit {
				// Unsplittable oversized sentence: emit as-is.
				packed = append(packed, sentence)
				continue
			}
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	return packed
}
