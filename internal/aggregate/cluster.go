package aggregate

import (
	"sort"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

// Merged is one evaluator's effective value on a cluster.
type Merged struct {
	Value    float64 `json:"value"`
	IsDirect bool    `json:"isDirect"`
	Samples  int     `json:"samples"` // source values averaged; 0 for direct
}

// MergeCluster builds the cluster's per-evaluator values. Source lists are
// folded first, in order, as a running mean per evaluator. Non-migrated
// evaluations made directly on the cluster then replace whatever the
// sources produced for that evaluator.
func MergeCluster(sources [][]model.Evaluation, direct []model.Evaluation) map[string]Merged {
	merged := make(map[string]Merged)

	for _, evals := range sources {
		for _, e := range evals {
			m, seen := merged[e.EvaluatorID]
			if m.IsDirect {
				continue
			}
			if !seen {
				merged[e.EvaluatorID] = Merged{Value: e.Value, Samples: 1}
				continue
			}
			n := float64(m.Samples)
			m.Value = (m.Value*n + e.Value) / (n + 1)
			m.Samples++
			merged[e.EvaluatorID] = m
		}
	}

	for _, e := range direct {
		if e.Migrated {
			continue
		}
		merged[e.EvaluatorID] = Merged{Value: e.Value, IsDirect: true}
	}

	return merged
}

// Values returns the merged values ordered by evaluator id, so sums come out
// bit-identical on every run.
func Values(merged map[string]Merged) []float64 {
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = merged[id].Value
	}
	return values
}
