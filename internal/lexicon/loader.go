package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/selivandex/news-impact/pkg/models"
)

// fileLexicon is the on-disk layout: mechanism -> keyword -> weight
//
//	geopolitical:
//	  sanctions: 0.8
//	  ceasefire: -0.6
type fileLexicon map[string]map[string]float64

// Parse builds lexicon from YAML document
func Parse(data []byte) (*Lexicon, error) {
	var raw fileLexicon
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse yaml: %v", ErrInvalidLexicon, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no mechanisms declared", ErrInvalidLexicon)
	}

	tables := make(map[models.Mechanism]map[string]float64, len(raw))
	for mechanism, keywords := range raw {
		tables[models.Mechanism(mechanism)] = keywords
	}

	return New(tables)
}

// Load reads lexicon from YAML file. Empty path returns the built-in lexicon.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon %s: %w", path, err)
	}

	return lex, nil
}
