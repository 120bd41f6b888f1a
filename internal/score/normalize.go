package score

import "math"

const (
	// DefaultSigmoidFactor flattens the sigmoid so typical consensus values
	// in [-1,1] map close to the 0.5 midpoint.
	DefaultSigmoidFactor = 20.0

	// DefaultCorroboration is used before the evidence engine has run.
	DefaultCorroboration = 0.5
)

// NormalizeConsensus maps an unbounded consensus value into (0,1).
func NormalizeConsensus(consensus, sigmoidFactor float64) float64 {
	if sigmoidFactor <= 0 || math.IsNaN(sigmoidFactor) {
		sigmoidFactor = DefaultSigmoidFactor
	}
	return 1 / (1 + math.Exp(-consensus/sigmoidFactor))
}

// Weights blend normalized consensus with corroboration level.
// They are expected to sum to at most 1; that is not enforced.
type Weights struct {
	Consensus     float64 `json:"consensusWeight"`
	Corroboration float64 `json:"corroborationWeight"`
}

// DefaultWeights returns an even blend.
func DefaultWeights() Weights {
	return Weights{Consensus: 0.5, Corroboration: 0.5}
}

// ConsensusValid blends the normalized consensus and the corroboration
// level. A nil corroboration counts as DefaultCorroboration.
func ConsensusValid(consensus float64, corroboration *float64, w Weights, sigmoidFactor float64) float64 {
	level := DefaultCorroboration
	if corroboration != nil {
		level = *corroboration
	}
	return w.Consensus*NormalizeConsensus(consensus, sigmoidFactor) + w.Corroboration*level
}
