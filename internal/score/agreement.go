package score

import "math"

// FloorStdDev is the minimum standard deviation assumed for any option, so a
// single evaluator or a unanimous handful cannot look perfectly certain.
const FloorStdDev = 0.5

// AgreementBreakdown exposes every intermediate of the agreement formula
type AgreementBreakdown struct {
	Evaluators     int     `json:"evaluators"`
	Mean           float64 `json:"mean"`
	Variance       float64 `json:"variance"`
	StdDev         float64 `json:"stdDev"`
	SEM            float64 `json:"sem"`
	AvailableRange float64 `json:"availableRange"`
	Penalty        float64 `json:"penalty"`
	Agreement      float64 `json:"agreement"`
	Formula        string  `json:"formula"`
}

// Agreement computes mean minus standard error of the mean, with the
// standard deviation floored at FloorStdDev and the penalty capped so the
// result never drops below -1.
func Agreement(sumEvaluations, sumSquaredEvaluations float64, numberOfEvaluators int) float64 {
	return BreakdownAgreement(sumEvaluations, sumSquaredEvaluations, numberOfEvaluators).Agreement
}

// BreakdownAgreement computes the agreement and returns all of its terms.
func BreakdownAgreement(sumEvaluations, sumSquaredEvaluations float64, numberOfEvaluators int) AgreementBreakdown {
	b := AgreementBreakdown{
		Evaluators: numberOfEvaluators,
		Formula:    "mean - min(max(stddev, 0.5) / sqrt(n), mean + 1)",
	}
	if numberOfEvaluators <= 0 {
		return b
	}

	n := float64(numberOfEvaluators)
	b.Mean = sumEvaluations / n

	if numberOfEvaluators == 1 {
		b.StdDev = FloorStdDev
		b.SEM = FloorStdDev
	} else {
		b.Variance = math.Max(0, sumSquaredEvaluations/n-b.Mean*b.Mean)
		b.StdDev = math.Max(math.Sqrt(b.Variance), FloorStdDev)
		b.SEM = b.StdDev / math.Sqrt(n)
	}

	b.AvailableRange = b.Mean + 1
	b.Penalty = math.Min(b.SEM, b.AvailableRange)
	b.Agreement = b.Mean - b.Penalty
	return b
}
