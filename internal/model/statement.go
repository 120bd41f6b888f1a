package model

import (
	"math"
	"time"
)

// StatementType distinguishes questions from the options proposed under them
type StatementType string

const (
	StatementQuestion StatementType = "question"
	StatementOption   StatementType = "option"
)

// Statement is a question or an option. Only the fields the scoring core
// reads or derives are modeled here.
type Statement struct {
	StatementID string        `json:"statementId" yaml:"statementId"`
	ParentID    string        `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	CreatorID   string        `json:"creatorId,omitempty" yaml:"creatorId,omitempty"`
	Type        StatementType `json:"statementType" yaml:"statementType"`
	Text        string        `json:"statement,omitempty" yaml:"statement,omitempty"`

	// Cluster linkage
	IsCluster         bool     `json:"isCluster,omitempty" yaml:"isCluster,omitempty"`
	IntegratedOptions []string `json:"integratedOptions,omitempty" yaml:"integratedOptions,omitempty"`
	IntegratedInto    string   `json:"integratedInto,omitempty" yaml:"integratedInto,omitempty"`

	// Derived aggregates, owned by recalculation
	Evaluation              StatementEvaluation `json:"evaluation" yaml:"evaluation"`
	Consensus               float64             `json:"consensus" yaml:"consensus"`
	ConsensusValid          float64             `json:"consensusValid" yaml:"consensusValid"`
	TotalEvaluators         int                 `json:"totalEvaluators" yaml:"totalEvaluators"`
	ProSum                  float64             `json:"proSum" yaml:"proSum"`
	ConSum                  float64             `json:"conSum" yaml:"conSum"`
	AsParentTotalEvaluators int                 `json:"asParentTotalEvaluators,omitempty" yaml:"asParentTotalEvaluators,omitempty"`
	PopperHebbianScore      *PopperHebbianScore `json:"popperHebbianScore,omitempty" yaml:"popperHebbianScore,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// IsClusterOption reports whether the statement declares itself a cluster.
// Clusters discovered only through reverse integratedInto links are not
// visible here.
func (s Statement) IsClusterOption() bool {
	return s.IsCluster || len(s.IntegratedOptions) > 0
}

// StatementEvaluation holds the aggregate counters of an option
type StatementEvaluation struct {
	NumberOfEvaluators     int     `json:"numberOfEvaluators" yaml:"numberOfEvaluators"`
	NumberOfProEvaluators  int     `json:"numberOfProEvaluators" yaml:"numberOfProEvaluators"`
	NumberOfConEvaluators  int     `json:"numberOfConEvaluators" yaml:"numberOfConEvaluators"`
	SumEvaluations         float64 `json:"sumEvaluations" yaml:"sumEvaluations"`
	SumSquaredEvaluations  float64 `json:"sumSquaredEvaluations" yaml:"sumSquaredEvaluations"`
	SumPro                 float64 `json:"sumPro" yaml:"sumPro"`
	SumCon                 float64 `json:"sumCon" yaml:"sumCon"` // magnitude of negative evaluations
	AverageEvaluation      float64 `json:"averageEvaluation" yaml:"averageEvaluation"`
	Agreement              float64 `json:"agreement" yaml:"agreement"`
	EvaluationRandomNumber float64 `json:"evaluationRandomNumber" yaml:"evaluationRandomNumber"`
	Viewed                 int     `json:"viewed" yaml:"viewed"`
}

// DerivedFields is everything a recalculation writes for one option in a
// single combined update.
type DerivedFields struct {
	Evaluation      StatementEvaluation `json:"evaluation"`
	Consensus       float64             `json:"consensus"`
	ConsensusValid  float64             `json:"consensusValid"`
	TotalEvaluators int                 `json:"totalEvaluators"`
	ProSum          float64             `json:"proSum"`
	ConSum          float64             `json:"conSum"`
}

// DerivedFieldsOf extracts the currently stored derived fields of a statement.
func DerivedFieldsOf(s Statement) DerivedFields {
	return DerivedFields{
		Evaluation:      s.Evaluation,
		Consensus:       s.Consensus,
		ConsensusValid:  s.ConsensusValid,
		TotalEvaluators: s.TotalEvaluators,
		ProSum:          s.ProSum,
		ConSum:          s.ConSum,
	}
}

// Apply copies derived fields onto the statement.
func (d DerivedFields) Apply(s *Statement) {
	s.Evaluation = d.Evaluation
	s.Consensus = d.Consensus
	s.ConsensusValid = d.ConsensusValid
	s.TotalEvaluators = d.TotalEvaluators
	s.ProSum = d.ProSum
	s.ConSum = d.ConSum
}

// FloatTolerance bounds float drift treated as equal when comparing stored
// and recomputed aggregates.
const FloatTolerance = 1e-9

// Equal compares two sets of derived fields, floats within FloatTolerance.
func (d DerivedFields) Equal(o DerivedFields) bool {
	a, b := d.Evaluation, o.Evaluation
	if a.NumberOfEvaluators != b.NumberOfEvaluators ||
		a.NumberOfProEvaluators != b.NumberOfProEvaluators ||
		a.NumberOfConEvaluators != b.NumberOfConEvaluators ||
		d.TotalEvaluators != o.TotalEvaluators {
		return false
	}
	pairs := [][2]float64{
		{a.SumEvaluations, b.SumEvaluations},
		{a.SumSquaredEvaluations, b.SumSquaredEvaluations},
		{a.SumPro, b.SumPro},
		{a.SumCon, b.SumCon},
		{a.AverageEvaluation, b.AverageEvaluation},
		{a.Agreement, b.Agreement},
		{d.Consensus, o.Consensus},
		{d.ConsensusValid, o.ConsensusValid},
		{d.ProSum, o.ProSum},
		{d.ConSum, o.ConSum},
	}
	for _, p := range pairs {
		if math.Abs(p[0]-p[1]) > FloatTolerance {
			return false
		}
	}
	return true
}
