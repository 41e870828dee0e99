package lexicon

import "github.com/selivandex/news-impact/pkg/models"

// Default returns the built-in oil-market lexicon.
// Positive weights push price up, negative weights push it down, zero only votes for a mechanism.
func Default() *Lexicon {
	lex, err := New(buildDefaultTables())
	if err != nil {
		panic("built-in lexicon is invalid: " + err.Error())
	}
	return lex
}

func buildDefaultTables() map[models.Mechanism]map[string]float64 {
	return map[models.Mechanism]map[string]float64{
		models.MechanismGeopolitical: {
			"sanction":    0.8,
			"embargo":     0.8,
			"war":         0.6,
			"attack":      0.6,
			"missile":     0.5,
			"conflict":    0.5,
			"tension":     0.4,
			"strike":      0.4,
			"blockade":    0.7,
			"ceasefire":   -0.6,
			"peace talks": -0.5,
			"truce":       -0.5,
			"geopolitics": 0.3,
		},
		models.MechanismSupply: {
			"outage":              0.7,
			"supply cut":          0.8,
			"output cut":          0.8,
			"production cut":      0.8,
			"supply disruption":   0.8,
			"shortage":            0.6,
			"deficit":             0.5,
			"inventory draw":      0.5,
			"refinery fire":       0.5,
			"glut":                -0.8,
			"oversupply":          -0.8,
			"output increase":     -0.6,
			"production increase": -0.6,
			"inventory build":     -0.5,
			"spr release":         -0.5,
			"pipeline":            0,
			"refinery":            0,
			"capacity":            0,
		},
		models.MechanismDemand: {
			"recession":     -0.8,
			"slowdown":      -0.6,
			"weak demand":   -0.7,
			"demand growth": 0.6,
			"strong demand": 0.6,
			"stimulus":      0.5,
			"consumption":   0.2,
			"pmi":           0,
			"china":         0,
		},
		models.MechanismMonetary: {
			"rate cut":        0.5,
			"rate hike":       -0.5,
			"dovish":          0.4,
			"hawkish":         -0.4,
			"weaker dollar":   0.4,
			"stronger dollar": -0.4,
			"inflation":       0.2,
			"interest rate":   0,
			"central bank":    0,
			"fed":             0,
		},
	}
}
