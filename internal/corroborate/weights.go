// Package corroborate folds classified evidence into a per-option
// corroboration belief.
package corroborate

import "github.com/delib-org/Freedi-app-sub004/internal/model"

// EvidenceWeights is the fixed weight of each evidence type.
var EvidenceWeights = map[model.EvidenceType]float64{
	model.EvidenceData:      1.0,
	model.EvidenceTestimony: 0.7,
	model.EvidenceArgument:  0.4,
	model.EvidenceAnecdote:  0.2,
	model.EvidenceFallacy:   0.1,
}

// Weight returns the weight for an evidence type. Unknown types weigh like
// an argument, the classifier's fail-safe default.
func Weight(t model.EvidenceType) float64 {
	if w, ok := EvidenceWeights[t]; ok {
		return w
	}
	return EvidenceWeights[model.EvidenceArgument]
}
