package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/news-impact/pkg/models"
)

func keywords(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Keyword
	}
	return out
}

func TestLexicon_Matches(t *testing.T) {
	lex, err := New(map[models.Mechanism]map[string]float64{
		models.MechanismGeopolitical: {"sanction": 0.8, "war": 0.6},
		models.MechanismSupply:       {"Supply Cut": 0.8, "glut": -0.8},
		models.MechanismMonetary:     {"fed": 0},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "plural form", text: "US widens sanctions on crude exports", want: []string{"sanction"}},
		{name: "multi word phrase", text: "OPEC+ agrees supply-cut extension", want: []string{"supply cut"}},
		{name: "case and punctuation", text: "GLUT! Fed, watch out.", want: []string{"glut", "fed"}},
		{name: "no substring inside words", text: "Analysts warn about software warranty", want: nil},
		{name: "each keyword once per text", text: "war war war", want: []string{"war"}},
		{name: "empty", text: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lex.Matches(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, keywords(got))
		})
	}
}

func TestLexicon_OrderIsStable(t *testing.T) {
	lex := Default()
	entries := lex.Entries()
	require.Equal(t, lex.Len(), len(entries))

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Mechanism == cur.Mechanism {
			assert.Less(t, prev.Keyword, cur.Keyword)
		} else {
			assert.Less(t, mechanismRank(prev.Mechanism), mechanismRank(cur.Mechanism))
		}
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		tables map[models.Mechanism]map[string]float64
	}{
		{name: "unknown mechanism", tables: map[models.Mechanism]map[string]float64{"weather": {"storm": 0.2}}},
		{name: "weight too large", tables: map[models.Mechanism]map[string]float64{models.MechanismSupply: {"outage": 1.2}}},
		{name: "blank keyword", tables: map[models.Mechanism]map[string]float64{models.MechanismSupply: {" !? ": 0.2}}},
		{name: "duplicate after normalization", tables: map[models.Mechanism]map[string]float64{
			models.MechanismSupply: {"supply cut": 0.8, "Supply-Cut": 0.7},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tables)
			require.ErrorIs(t, err, ErrInvalidLexicon)
		})
	}
}

func TestParseAndLoad(t *testing.T) {
	doc := []byte(`
geopolitical:
  sanctions: 0.8
  ceasefire: -0.6
demand:
  recession: -0.8
`)

	lex, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, 3, lex.Len())

	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, doc, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, lex.Entries(), loaded.Entries())

	builtin, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Len(), builtin.Len())

	_, err = Parse([]byte("supply: [not, a, map]"))
	require.ErrorIs(t, err, ErrInvalidLexicon)

	_, err = Parse([]byte(""))
	require.ErrorIs(t, err, ErrInvalidLexicon)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLexicon_Tally(t *testing.T) {
	items := []models.NewsItem{
		{ID: "1", Title: "Missile attack near Hormuz lifts war premium"},
		{ID: "2", Title: "Refinery outage trims output", Content: "Fed holds rates"},
		{ID: "3", Title: "China demand slowdown deepens"},
		{ID: "4", Title: "Quiet trading session"},
	}

	got := Default().Tally(items)
	assert.Equal(t, map[models.Mechanism]int{
		models.MechanismGeopolitical: 1,
		models.MechanismSupply:       1,
		models.MechanismDemand:       1,
		models.MechanismMonetary:     1,
	}, got)
}
