package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Fixture is the typed import format for seeding a store from YAML or JSON.
type Fixture struct {
	Statements  []Statement       `json:"statements" yaml:"statements"`
	Evaluations []Evaluation      `json:"evaluations" yaml:"evaluations"`
	Evidence    []FixtureEvidence `json:"evidence" yaml:"evidence"`
}

// FixtureEvidence is an evidence post as written in a fixture. Scores are
// optional so records exported before corroborationScore existed can carry
// only the legacy support value. Weights are never read from a fixture.
type FixtureEvidence struct {
	EvidenceID         string       `json:"evidenceId" yaml:"evidenceId"`
	ParentID           string       `json:"parentId" yaml:"parentId"`
	CreatorID          string       `json:"creatorId,omitempty" yaml:"creatorId,omitempty"`
	Text               string       `json:"statement" yaml:"statement"`
	EvidenceType       EvidenceType `json:"evidenceType,omitempty" yaml:"evidenceType,omitempty"`
	CorroborationScore *float64     `json:"corroborationScore,omitempty" yaml:"corroborationScore,omitempty"`
	Support            *float64     `json:"support,omitempty" yaml:"support,omitempty"`
	CreatedAt          time.Time    `json:"createdAt" yaml:"createdAt"`
}

// Evidence converts the record. A missing corroborationScore is remapped
// from support; a typed record with neither score is neutral. A scored
// record without a type counts as an argument so the score is kept.
func (r FixtureEvidence) Evidence() Evidence {
	ev := Evidence{
		EvidenceID:   r.EvidenceID,
		ParentID:     r.ParentID,
		CreatorID:    r.CreatorID,
		Text:         r.Text,
		EvidenceType: r.EvidenceType,
		CreatedAt:    r.CreatedAt,
	}
	scored := true
	switch {
	case r.CorroborationScore != nil:
		ev.CorroborationScore = *r.CorroborationScore
	case r.Support != nil:
		ev.CorroborationScore = CorroborationFromSupport(*r.Support)
	default:
		scored = false
		ev.CorroborationScore = 0.5
	}
	if scored && ev.EvidenceType == "" {
		ev.EvidenceType = EvidenceArgument
	}
	ev.Support = SupportFromCorroboration(ev.CorroborationScore)
	return ev
}

func (r FixtureEvidence) validate() error {
	var errs []error
	if r.EvidenceID == "" || r.ParentID == "" {
		errs = append(errs, errors.New("missing evidenceId or parentId"))
	}
	if r.EvidenceType != "" {
		if _, ok := ParseEvidenceType(string(r.EvidenceType)); !ok {
			errs = append(errs, fmt.Errorf("unknown evidenceType %q", r.EvidenceType))
		}
	}
	if c := r.CorroborationScore; c != nil && !inRange(*c, 0, 1) {
		errs = append(errs, fmt.Errorf("corroborationScore %v outside [0,1]", *c))
	}
	if sup := r.Support; sup != nil && !inRange(*sup, -1, 1) {
		errs = append(errs, fmt.Errorf("support %v outside [-1,1]", *sup))
	}
	return errors.Join(errs...)
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

// EvidenceRecords converts every fixture evidence record.
func (f Fixture) EvidenceRecords() []Evidence {
	out := make([]Evidence, 0, len(f.Evidence))
	for _, r := range f.Evidence {
		out = append(out, r.Evidence())
	}
	return out
}

// Validate checks every record at the boundary so the core only ever sees
// well-formed entities.
func (f Fixture) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(f.Statements))
	for i, s := range f.Statements {
		if s.StatementID == "" {
			errs = append(errs, fmt.Errorf("statements[%d]: missing statementId", i))
			continue
		}
		if seen[s.StatementID] {
			errs = append(errs, fmt.Errorf("statements[%d]: duplicate statementId %q", i, s.StatementID))
		}
		seen[s.StatementID] = true
		switch s.Type {
		case StatementQuestion, StatementOption:
		default:
			errs = append(errs, fmt.Errorf("statements[%d]: unknown statementType %q", i, s.Type))
		}
	}
	for i, e := range f.Evaluations {
		if err := ValidateEvaluation(e); err != nil {
			errs = append(errs, fmt.Errorf("evaluations[%d]: %w", i, err))
		}
	}
	for i, ev := range f.Evidence {
		if err := ev.validate(); err != nil {
			errs = append(errs, fmt.Errorf("evidence[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
