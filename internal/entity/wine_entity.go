package entity

// WineRecord is a flat wine product entity. Zero-valued fields are treated as
// absent and skipped when the record is projected into a chunk.
type WineRecord struct {
	Name        string  `json:"name"`
	Style       string  `json:"type"`
	Winery      string  `json:"winery"`
	Region      string  `json:"region"`
	Grape       string  `json:"grape"`
	Alcohol     float64 `json:"alcohol"`
	Temperature string  `json:"temperature"`
	Aging       string  `json:"crianza"`
	Price       float64 `json:"price"`
	Score       float64 `json:"rating"`
	Pairing     string  `json:"pairing"`
	Description string  `json:"description"`
}

// ItemKind tags a retrieved item variant.
type ItemKind string

const (
	ItemKindWine      ItemKind = "wine"
	ItemKindKnowledge ItemKind = "knowledge"
)

// KnowledgeExcerpt is the knowledge-side variant of a retrieved item.
type KnowledgeExcerpt struct {
	Section  string   `json:"section,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Text     string   `json:"text"`
}

// ScoredItem is a retrieval result: exactly one of Wine or Excerpt is set,
// selected by Kind. Relevance is 1 - cosine distance and is deliberately not
// clamped; values outside [0,1] are meaningful ranking signals.
type ScoredItem struct {
	Kind      ItemKind          `json:"type"`
	Wine      *WineRecord       `json:"wine,omitempty"`
	Excerpt   *KnowledgeExcerpt `json:"knowledge,omitempty"`
	Relevance float64           `json:"relevance_score"`
}

// Label returns a short display name for the item, used when persisting
// recommendations alongside a conversation turn.
func (s *ScoredItem) Label() string {
	switch s.Kind {
	case ItemKindWine:
		if s.Wine != nil {
			return s.Wine.Name
		}
	case ItemKindKnowledge:
		if s.Excerpt != nil && s.Excerpt.Section != "" {
			return s.Excerpt.Section
		}
	}
	return string(s.Kind)
}
