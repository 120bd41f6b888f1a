package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Evaluation is a single participant's rating of an option.
// One evaluation per (evaluator, statement) pair.
type Evaluation struct {
	StatementID string    `json:"statementId" yaml:"statementId"`
	ParentID    string    `json:"parentId" yaml:"parentId"` // question the option belongs to
	EvaluatorID string    `json:"evaluatorId" yaml:"evaluatorId"`
	Value       float64   `json:"evaluation" yaml:"evaluation"` // in [-1,1], 0 = neutral
	Migrated    bool      `json:"migrated,omitempty" yaml:"migrated,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// IsNeutral reports whether the evaluation expresses no opinion.
func (e Evaluation) IsNeutral() bool {
	return e.Value == 0
}

// ValidateEvaluation rejects records that cannot feed the aggregator.
func ValidateEvaluation(e Evaluation) error {
	var missing []string
	if e.StatementID == "" {
		missing = append(missing, "statementId")
	}
	if e.ParentID == "" {
		missing = append(missing, "parentId")
	}
	if e.EvaluatorID == "" {
		missing = append(missing, "evaluatorId")
	}
	if len(missing) > 0 {
		return NewValidationError("MISSING_FIELD", fmt.Sprintf("evaluation missing %s", strings.Join(missing, ", ")))
	}
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return NewValidationError("INVALID_VALUE", fmt.Sprintf("evaluation of %s by %s is not a number", e.StatementID, e.EvaluatorID))
	}
	if e.Value < -1 || e.Value > 1 {
		return NewValidationError("OUT_OF_RANGE", fmt.Sprintf("evaluation %.3f of %s by %s outside [-1,1]", e.Value, e.StatementID, e.EvaluatorID))
	}
	return nil
}
