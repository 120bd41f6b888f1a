package corroborate

import (
	"math"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

const (
	// Prior is the belief an option holds before any evidence arrives.
	Prior = 0.6

	// MaxLogOdds bounds the belief to roughly (0.0001, 0.9999) so repeated
	// evidence never reaches 0 or 1 in float64. Updates are strictly
	// monotonic below the bound; once the log-odds hit it, further evidence
	// in the same direction leaves the score at Bound() (or 1-Bound()).
	MaxLogOdds = 9.2

	minCorroboration = 0.01
	maxCorroboration = 0.99
)

// Update applies one evidence item to the running score. The score is
// treated as a probability; its odds are multiplied by
// (c/(1-c))^weight. A corroboration of exactly 0.5 leaves the score as is.
func Update(score, corroboration, weight float64) float64 {
	delta := weight * logit(clamp(corroboration, minCorroboration, maxCorroboration))
	if delta == 0 || math.IsNaN(delta) {
		return score
	}
	lo := clamp(logit(score)+delta, -MaxLogOdds, MaxLogOdds)
	return 1 / (1 + math.Exp(-lo))
}

// Fold applies every evidence item left to right, starting from prior.
// Zero items yield the prior.
func Fold(items []model.Evidence, prior float64) float64 {
	score := prior
	for _, ev := range items {
		w := ev.EvidenceWeight
		if w == 0 && ev.EvidenceType != "" {
			w = Weight(ev.EvidenceType)
		}
		score = Update(score, ev.CorroborationScore, clamp(w, 0, 1))
	}
	return score
}

// Bound is the highest score Update can produce.
func Bound() float64 {
	return 1 / (1 + math.Exp(-MaxLogOdds))
}

func logit(p float64) float64 {
	p = clamp(p, 1e-12, 1-1e-12)
	return math.Log(p / (1 - p))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
