package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Assets are the text resources that drive classification and generation:
// prompt templates, keyword dictionaries and canned responses. They live in
// plain YAML files so the sommelier's behaviour can be tuned without a
// rebuild.
type Assets struct {
	Prompts   Prompts         `yaml:"-"`
	Keywords  Keywords        `yaml:"-"`
	Responses CannedResponses `yaml:"-"`
}

type Prompts struct {
	Classification string `yaml:"classification" validate:"required"`
	WineSearch     string `yaml:"wine_search" validate:"required"`
	WineTheory     string `yaml:"wine_theory" validate:"required"`
	SecretMessage  string `yaml:"secret_message" validate:"required"`

	// SecretRecipient is the fixed addressee of generated secret messages;
	// the sender comes from the caller's declared name.
	SecretRecipient string `yaml:"secret_recipient" validate:"required"`
}

// KeywordWeight pairs a romance keyword with its base confidence.
type KeywordWeight struct {
	Word       string  `yaml:"word" validate:"required"`
	Confidence float64 `yaml:"confidence" validate:"gte=0,lte=1"`
}

// StyleKeyword maps a query keyword to the canonical wine style it filters
// on. Declared order is the tie-break priority: the first matching keyword
// wins.
type StyleKeyword struct {
	Keyword string `yaml:"keyword" validate:"required"`
	Style   string `yaml:"style" validate:"required"`
}

type RomanceKeywords struct {
	// Entries are matched in declared order; a slice, never a map, so the
	// first-qualifying-match rule stays deterministic.
	Entries         []KeywordWeight `yaml:"entries" validate:"required,min=1,dive"`
	ExactMatchBonus float64         `yaml:"exact_match_bonus" validate:"gte=0,lte=1"`
	MinConfidence   float64         `yaml:"min_confidence" validate:"gte=0,lte=1"`
}

type Keywords struct {
	Romance             RomanceKeywords `yaml:"romance" validate:"required"`
	WineSearch          []string        `yaml:"wine_search" validate:"required,min=1"`
	Theory              []string        `yaml:"theory" validate:"required,min=1"`
	Greeting            []string        `yaml:"greeting" validate:"required,min=1"`
	Styles              []StyleKeyword  `yaml:"styles" validate:"required,min=1,dive"`
	KnowledgeIndicators []string        `yaml:"knowledge_indicators" validate:"required,min=1"`

	// Vocabulary is the fixed keyword set the section chunker tags chunks
	// with (substring match, at most five per chunk).
	Vocabulary []string `yaml:"vocabulary" validate:"required,min=1"`
}

type CannedResponses struct {
	Greeting        string `yaml:"greeting" validate:"required"`
	OffTopic        string `yaml:"off_topic" validate:"required"`
	GenerationError string `yaml:"generation_error" validate:"required"`
	RetrievalError  string `yaml:"retrieval_error" validate:"required"`
}

const (
	promptsFile   = "prompts.yaml"
	keywordsFile  = "keywords.yaml"
	responsesFile = "responses.yaml"
)

// LoadAssets reads and validates all asset files from dir.
func LoadAssets(dir string) (*Assets, error) {
	validate := validator.New()
	assets := &Assets{}

	if err := loadYAML(filepath.Join(dir, promptsFile), &assets.Prompts); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, keywordsFile), &assets.Keywords); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, responsesFile), &assets.Responses); err != nil {
		return nil, err
	}

	if err := validate.Struct(assets.Prompts); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", promptsFile, err)
	}
	if err := validate.Struct(assets.Keywords); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", keywordsFile, err)
	}
	if err := validate.Struct(assets.Responses); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", responsesFile, err)
	}

	return assets, nil
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read asset %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse asset %s: %w", path, err)
	}
	return nil
}
