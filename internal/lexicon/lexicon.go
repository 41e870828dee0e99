// Package lexicon holds the economic keyword tables used for lexical impact signals.
//
// A Lexicon is immutable after construction and safe to share between goroutines.
package lexicon

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/selivandex/news-impact/pkg/models"
)

// ErrInvalidLexicon is returned when a keyword table fails validation
var ErrInvalidLexicon = errors.New("invalid lexicon")

// inflections are accepted right after a keyword ("sanction" matches "sanctions")
var inflections = []string{"s", "es", "ed", "ing"}

// Entry is one keyword with its signed price weight and mechanism
type Entry struct {
	Keyword   string
	Mechanism models.Mechanism
	Weight    float64
}

// Match is an entry found in a text
type Match = Entry

// Lexicon maps keywords to weights for each mechanism category
type Lexicon struct {
	entries []Entry
}

// New builds lexicon from mechanism -> keyword -> weight tables
func New(tables map[models.Mechanism]map[string]float64) (*Lexicon, error) {
	entries := make([]Entry, 0)
	seen := make(map[string]struct{})

	for mechanism, keywords := range tables {
		if !mechanism.IsKnown() {
			return nil, fmt.Errorf("%w: unknown mechanism %q", ErrInvalidLexicon, mechanism)
		}

		for raw, weight := range keywords {
			keyword := normalize(raw)
			if keyword == "" {
				return nil, fmt.Errorf("%w: empty keyword in %s", ErrInvalidLexicon, mechanism)
			}
			if math.IsNaN(weight) || weight < -1 || weight > 1 {
				return nil, fmt.Errorf("%w: weight of %q must be within [-1, 1], got %v", ErrInvalidLexicon, raw, weight)
			}

			key := string(mechanism) + "/" + keyword
			if _, ok := seen[key]; ok {
				return nil, fmt.Errorf("%w: keyword %q declared twice in %s", ErrInvalidLexicon, keyword, mechanism)
			}
			seen[key] = struct{}{}

			entries = append(entries, Entry{Keyword: keyword, Mechanism: mechanism, Weight: weight})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Mechanism != entries[j].Mechanism {
			return mechanismRank(entries[i].Mechanism) < mechanismRank(entries[j].Mechanism)
		}
		return entries[i].Keyword < entries[j].Keyword
	})

	return &Lexicon{entries: entries}, nil
}

// Len returns number of keywords
func (l *Lexicon) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries in stable order
func (l *Lexicon) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Matches returns every entry present in text. An entry matches at most once per text.
func (l *Lexicon) Matches(text string) []Match {
	padded := " " + normalize(text) + " "
	if strings.TrimSpace(padded) == "" {
		return nil
	}

	var matches []Match
	for _, e := range l.entries {
		if containsWord(padded, e.Keyword) {
			matches = append(matches, e)
		}
	}

	return matches
}

// Tally counts items that mention at least one keyword of each mechanism
func (l *Lexicon) Tally(items []models.NewsItem) map[models.Mechanism]int {
	counts := make(map[models.Mechanism]int, len(models.Mechanisms))
	for _, m := range models.Mechanisms {
		counts[m] = 0
	}

	for i := range items {
		mentioned := make(map[models.Mechanism]bool)
		for _, m := range l.Matches(items[i].Text()) {
			mentioned[m.Mechanism] = true
		}
		for m := range mentioned {
			counts[m]++
		}
	}

	return counts
}

// containsWord looks for keyword starting at a word boundary in a space padded text
func containsWord(padded, keyword string) bool {
	needle := " " + keyword
	offset := 0

	for {
		idx := strings.Index(padded[offset:], needle)
		if idx < 0 {
			return false
		}

		rest := padded[offset+idx+len(needle):]
		if strings.HasPrefix(rest, " ") {
			return true
		}
		for _, suffix := range inflections {
			if strings.HasPrefix(rest, suffix+" ") {
				return true
			}
		}

		offset += idx + 1
	}
}

// normalize lowercases text and collapses everything but letters and digits into single spaces
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}

	return strings.TrimSpace(b.String())
}

func mechanismRank(m models.Mechanism) int {
	for i, known := range models.Mechanisms {
		if m == known {
			return i
		}
	}
	return len(models.Mechanisms)
}
