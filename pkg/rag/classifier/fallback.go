package classifier

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/entity"
)

var (
	errNoJSON          = errors.New("no JSON object in response")
	errUnknownCategory = errors.New("unknown category in response")
	errConfidenceRange = errors.New("confidence outside [0,1]")
)

// classifyByKeywords is the deterministic fallback: no external calls, same
// input always yields the same verdict. Dictionaries are scanned in their
// configured order and the first qualifying match wins.
func classifyByKeywords(normalized string, keywords *config.Keywords) *entity.QueryClassification {
	if verdict := matchRomance(normalized, &keywords.Romance); verdict != nil {
		return verdict
	}

	if word := containsAny(normalized, keywords.WineSearch); word != "" {
		return &entity.QueryClassification{
			Category:   constant.CategoryWineSearch,
			Confidence: 0.7,
			Reasoning:  fmt.Sprintf("keyword match: %q", word),
		}
	}

	if word := containsAny(normalized, keywords.Theory); word != "" {
		return &entity.QueryClassification{
			Category:   constant.CategoryWineTheory,
			Confidence: 0.7,
			Reasoning:  fmt.Sprintf("keyword match: %q", word),
		}
	}

	if word := containsAny(normalized, keywords.Greeting); word != "" {
		return &entity.QueryClassification{
			Category:   constant.CategoryGreeting,
			Confidence: 0.6,
			Reasoning:  fmt.Sprintf("keyword match: %q", word),
		}
	}

	return &entity.QueryClassification{
		Category:   constant.CategoryOffTopic,
		Confidence: 0.5,
		Reasoning:  "no keyword matched",
	}
}

// matchRomance scans the weighted romance dictionary in configured order.
// An exact full-query match scores base plus the exact-match bonus; a
// substring match scores base plus a length-scaled boost and must clear the
// configured minimum confidence to qualify.
func matchRomance(normalized string, romance *config.RomanceKeywords) *entity.QueryClassification {
	for _, entry := range romance.Entries {
		word := strings.ToLower(entry.Word)

		if normalized == word {
			confidence := entry.Confidence + romance.ExactMatchBonus
			if confidence > 1.0 {
				confidence = 1.0
			}
			return &entity.QueryClassification{
				Category:   constant.CategorySecretMessage,
				Confidence: confidence,
				Reasoning:  fmt.Sprintf("exact romance keyword: %q", entry.Word),
			}
		}

		if strings.Contains(normalized, word) {
			boost := float64(utf8.RuneCountInString(word)) / 50
			if boost > 0.2 {
				boost = 0.2
			}
			confidence := entry.Confidence + boost
			if confidence > 1.0 {
				confidence = 1.0
			}
			if confidence >= romance.MinConfidence {
				return &entity.QueryClassification{
					Category:   constant.CategorySecretMessage,
					Confidence: confidence,
					Reasoning:  fmt.Sprintf("romance keyword: %q", entry.Word),
				}
			}
		}
	}
	return nil
}

func containsAny(normalized string, words []string) string {
	for _, word := range words {
		if strings.Contains(normalized, strings.ToLower(word)) {
			return word
		}
	}
	return ""
}
