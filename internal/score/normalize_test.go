package score

import (
	"math"
	"testing"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

func TestNormalizeConsensus_Midpoint(t *testing.T) {
	if got := NormalizeConsensus(0, DefaultSigmoidFactor); got != 0.5 {
		t.Errorf("NormalizeConsensus(0) = %v, want exactly 0.5", got)
	}
}

func TestNormalizeConsensus_StrictlyIncreasing(t *testing.T) {
	prev := NormalizeConsensus(-50, DefaultSigmoidFactor)
	for x := -49.5; x <= 50; x += 0.5 {
		cur := NormalizeConsensus(x, DefaultSigmoidFactor)
		if cur <= prev {
			t.Fatalf("not strictly increasing at %v: %v <= %v", x, cur, prev)
		}
		if cur <= 0 || cur >= 1 {
			t.Fatalf("NormalizeConsensus(%v) = %v outside (0,1)", x, cur)
		}
		prev = cur
	}
}

func TestNormalizeConsensus_InvalidFactorFallsBack(t *testing.T) {
	want := NormalizeConsensus(0.4, DefaultSigmoidFactor)
	for _, f := range []float64{0, -3, math.NaN()} {
		if got := NormalizeConsensus(0.4, f); got != want {
			t.Errorf("factor %v: got %v, want %v", f, got, want)
		}
	}
}

func TestConsensusValid(t *testing.T) {
	tests := []struct {
		name          string
		consensus     float64
		corroboration *float64
		weights       Weights
		want          float64
	}{
		{
			name:      "no evidence yet uses neutral corroboration",
			consensus: 0,
			weights:   DefaultWeights(),
			want:      0.5,
		},
		{
			name:          "full corroboration",
			consensus:     0,
			corroboration: ptr(1),
			weights:       DefaultWeights(),
			want:          0.75,
		},
		{
			name:          "consensus only",
			consensus:     0,
			corroboration: ptr(0),
			weights:       Weights{Consensus: 1, Corroboration: 0},
			want:          0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConsensusValid(tt.consensus, tt.corroboration, tt.weights, DefaultSigmoidFactor)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ConsensusValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScorer_Defaults(t *testing.T) {
	s := NewScorer(model.ScoringConfig{})
	if s.SigmoidFactor() != DefaultSigmoidFactor {
		t.Errorf("SigmoidFactor = %v, want %v", s.SigmoidFactor(), DefaultSigmoidFactor)
	}

	res := s.Score(model.StatementEvaluation{NumberOfEvaluators: 1, SumEvaluations: 1, SumSquaredEvaluations: 1}, nil)
	if res.Agreement != 0.5 || res.Consensus != 0.5 {
		t.Errorf("Score agreement/consensus = %v/%v, want 0.5", res.Agreement, res.Consensus)
	}
	want := 0.5*NormalizeConsensus(0.5, DefaultSigmoidFactor) + 0.5*DefaultCorroboration
	if math.Abs(res.ConsensusValid-want) > 1e-12 {
		t.Errorf("ConsensusValid = %v, want %v", res.ConsensusValid, want)
	}
}

func TestScorer_UsesPopperScore(t *testing.T) {
	s := NewScorer(model.DefaultConfig().Scoring)
	popper := &model.PopperHebbianScore{HebbianScore: 0.9}
	res := s.Score(model.StatementEvaluation{}, popper)
	want := 0.5*0.5 + 0.5*0.9
	if math.Abs(res.ConsensusValid-want) > 1e-12 {
		t.Errorf("ConsensusValid = %v, want %v", res.ConsensusValid, want)
	}
}

func ptr(v float64) *float64 { return &v }
