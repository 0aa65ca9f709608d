package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/entity"
)

// DefaultTokenBudget is the per-chunk budget of the section-aware chunker.
const DefaultTokenBudget = 1000

// headingPattern matches markdown headings and numbered titles
// ("## Maridaje", "3. La crianza en barrica").
var (
	headingPattern  = regexp.MustCompile(`^(#{1,6}\s+.+|\d+[.)]\s+\S.*)$`)
	headingNumbered = regexp.MustCompile(`^\d+[.)]\s+`)
)

// SectionChunker is the higher-fidelity text chunker: it partitions a
// document into titled sections, then packs paragraphs per section under a
// token budget and tags each chunk with domain keywords.
type SectionChunker struct {
	TokenBudget int
	Vocabulary  []string
	MaxKeywords int
}

func NewSectionChunker(vocabulary []string) *SectionChunker {
	return &SectionChunker{
		TokenBudget: DefaultTokenBudget,
		Vocabulary:  vocabulary,
		MaxKeywords: 5,
	}
}

type section struct {
	title string
	body  []string // paragraphs
}

// Chunk splits the document into section-prefixed, token-bounded chunks.
func (c *SectionChunker) Chunk(source, text string) []*entity.KnowledgeChunk {
	budget := c.TokenBudget
	if budget <= 0 {
		budget = DefaultTokenBudget
	}

	var chunks []*entity.KnowledgeChunk
	idx := 0

	for _, sec := range splitSections(text) {
		for _, body := range c.packSection(sec, budget) {
			prefixed := body
			if sec.title != "" {
				prefixed = fmt.Sprintf("[%s] %s", sec.title, body)
			}
			chunks = append(chunks, &entity.KnowledgeChunk{
				Id:   fmt.Sprintf("%s_%s_%d", Slug(source), Slug(sec.title), idx),
				Text: prefixed,
				Metadata: map[string]interface{}{
					"type":     constant.ChunkTypeKnowledge,
					"source":   source,
					"section":  sec.title,
					"keywords": c.tagKeywords(prefixed),
					"tokens":   EstimateTokens(prefixed),
				},
			})
			idx++
		}
	}

	return chunks
}

// packSection greedily accumulates paragraphs while the token estimate stays
// within budget. A paragraph that alone exceeds the budget is sentence-split
// and packed the same way.
func (c *SectionChunker) packSection(sec section, budget int) []string {
	var packed []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			packed = append(packed, current.String())
			current.Reset()
		}
	}

	for _, paragraph := range sec.body {
		if EstimateTokens(paragraph) > budget {
			flush()
			charLimit := budget * 4
			packed = append(packed, packSentences(splitSentences(paragraph), charLimit, runeLenOf)...)
			continue
		}

		candidate := paragraph
		if current.Len() > 0 {
			candidate = current.String() + "\n\n" + paragraph
		}
		if EstimateTokens(candidate) > budget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return packed
}

// tagKeywords returns up to MaxKeywords vocabulary words found in the chunk,
// in vocabulary order. Substring match, no stemming.
func (c *SectionChunker) tagKeywords(text string) []string {
	lower := strings.ToLower(text)
	keywords := make([]string, 0, c.MaxKeywords)
	for _, word := range c.Vocabulary {
		if strings.Contains(lower, strings.ToLower(word)) {
			keywords = append(keywords, word)
			if len(keywords) == c.MaxKeywords {
				break
			}
		}
	}
	return keywords
}

// HasHeadings reports whether any paragraph opens with a heading line.
// Headingless documents chunk better with ChunkText.
func HasHeadings(text string) bool {
	for _, block := range paragraphSplitter.Split(text, -1) {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if headingPattern.MatchString(strings.TrimSpace(lines[0])) {
			return true
		}
	}
	return false
}

// splitSections partitions text on heading lines. Content before the first
// heading becomes an untitled section.
func splitSections(text string) []section {
	var sections []section
	current := section{}

	flush := func() {
		if len(current.body) > 0 || current.title != "" {
			sections = append(sections, current)
		}
	}

	for _, block := range paragraphSplitter.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		lines := strings.Split(block, "\n")
		first := strings.TrimSpace(lines[0])
		if headingPattern.MatchString(first) {
			flush()
			current = section{title: cleanHeading(first)}
			rest := strings.TrimSpace(strings.Join(lines[1:], "\n"))
			if rest != "" {
				current.body = append(current.body, rest)
			}
			continue
		}

		current.body = append(current.body, block)
	}
	flush()

	return sections
}

func cleanHeading(line string) string {
	line = strings.TrimLeft(line, "# ")
	line = headingNumbered.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// EstimateTokens approximates token count as rune count divided by four.
// A fixed heuristic, not a real tokenizer.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

func runeLenOf(text string) int { return utf8.RuneCountInString(text) }
