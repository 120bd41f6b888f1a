// Package aggregate rebuilds an option's evaluation counters from raw
// evaluation records, merging source evaluations into clusters.
package aggregate

import (
	"math"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

// Accumulate folds per-evaluator values into counters. Neutral values are
// left out of every sum and count, so NumberOfEvaluators is always
// pro plus con. SumCon holds the magnitude of the negative values.
// Agreement is left for the scorer.
func Accumulate(values []float64) model.StatementEvaluation {
	var c model.StatementEvaluation
	for _, v := range values {
		switch {
		case v > 0:
			c.NumberOfProEvaluators++
			c.SumPro += v
		case v < 0:
			c.NumberOfConEvaluators++
			c.SumCon += math.Abs(v)
		default:
			continue
		}
		c.SumEvaluations += v
		c.SumSquaredEvaluations += v * v
	}
	c.NumberOfEvaluators = c.NumberOfProEvaluators + c.NumberOfConEvaluators
	if c.NumberOfEvaluators > 0 {
		c.AverageEvaluation = c.SumEvaluations / float64(c.NumberOfEvaluators)
	}
	return c
}
