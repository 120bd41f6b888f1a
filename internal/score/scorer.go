package score

import "github.com/delib-org/Freedi-app-sub004/internal/model"

// Scorer turns aggregate counters into agreement, consensus and
// consensus-valid using the configured blend.
type Scorer struct {
	sigmoidFactor float64
	weights       Weights
}

// NewScorer creates a scorer from configuration, falling back to defaults
// for unset values.
func NewScorer(cfg model.ScoringConfig) *Scorer {
	s := &Scorer{
		sigmoidFactor: cfg.SigmoidFactor,
		weights: Weights{
			Consensus:     cfg.ConsensusWeight,
			Corroboration: cfg.CorroborationWeight,
		},
	}
	if s.sigmoidFactor <= 0 {
		s.sigmoidFactor = DefaultSigmoidFactor
	}
	if s.weights.Consensus == 0 && s.weights.Corroboration == 0 {
		s.weights = DefaultWeights()
	}
	return s
}

// Result is the scored view of one option
type Result struct {
	Agreement      float64            `json:"agreement"`
	Consensus      float64            `json:"consensus"`
	ConsensusValid float64            `json:"consensusValid"`
	Breakdown      AgreementBreakdown `json:"breakdown"`
}

// Score computes agreement from the counters and blends it with the
// option's current corroboration level, if any.
func (s *Scorer) Score(counters model.StatementEvaluation, popper *model.PopperHebbianScore) Result {
	b := BreakdownAgreement(counters.SumEvaluations, counters.SumSquaredEvaluations, counters.NumberOfEvaluators)
	return Result{
		Agreement:      b.Agreement,
		Consensus:      b.Agreement,
		ConsensusValid: s.ConsensusValid(b.Agreement, popper.CorroborationLevel()),
		Breakdown:      b,
	}
}

// ConsensusValid blends consensus with corroboration using the scorer's weights.
func (s *Scorer) ConsensusValid(consensus float64, corroboration *float64) float64 {
	return ConsensusValid(consensus, corroboration, s.weights, s.sigmoidFactor)
}

// SigmoidFactor returns the configured normalization factor.
func (s *Scorer) SigmoidFactor() float64 {
	return s.sigmoidFactor
}
