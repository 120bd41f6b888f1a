package model

import (
	"strings"
	"time"
)

// Evidence is a child statement posted under an option to support or
// challenge it. Type and corroboration come from the evidence classifier.
type Evidence struct {
	EvidenceID         string       `json:"evidenceId" yaml:"evidenceId"`
	ParentID           string       `json:"parentId" yaml:"parentId"` // option the evidence targets
	CreatorID          string       `json:"creatorId,omitempty" yaml:"creatorId,omitempty"`
	Text               string       `json:"statement" yaml:"statement"`
	EvidenceType       EvidenceType `json:"evidenceType,omitempty" yaml:"evidenceType,omitempty"`
	EvidenceWeight     float64      `json:"evidenceWeight" yaml:"evidenceWeight"`
	CorroborationScore float64      `json:"corroborationScore" yaml:"corroborationScore"`
	Support            float64      `json:"support" yaml:"support"` // legacy mirror in [-1,1]
	CreatedAt          time.Time    `json:"createdAt" yaml:"createdAt"`
}

// Classified reports whether the evidence already carries a classification.
func (e Evidence) Classified() bool {
	return e.EvidenceType != ""
}

// EvidenceType classifies the epistemic kind of an evidence post
type EvidenceType string

const (
	EvidenceData      EvidenceType = "data"      // Measurements, studies, statistics
	EvidenceTestimony EvidenceType = "testimony" // Expert or first-hand accounts
	EvidenceArgument  EvidenceType = "argument"  // Reasoned argument without new data
	EvidenceAnecdote  EvidenceType = "anecdote"  // Single personal story
	EvidenceFallacy   EvidenceType = "fallacy"   // Logically flawed reasoning
)

// EvidenceTypes lists every known evidence type, strongest first.
func EvidenceTypes() []EvidenceType {
	return []EvidenceType{EvidenceData, EvidenceTestimony, EvidenceArgument, EvidenceAnecdote, EvidenceFallacy}
}

// ParseEvidenceType maps a loosely formatted label onto a known type.
func ParseEvidenceType(s string) (EvidenceType, bool) {
	normalized := EvidenceType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range EvidenceTypes() {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// Status is the coarse corroboration label shown next to an option
type Status string

const (
	StatusLookingGood     Status = "looking-good"
	StatusUnderDiscussion Status = "under-discussion"
	StatusNeedsFixing     Status = "needs-fixing"
)

// PopperHebbianScore is the running corroboration belief of an option,
// rebuilt from all of its evidence children on every evidence change.
type PopperHebbianScore struct {
	StatementID    string    `json:"statementId" yaml:"statementId"`
	HebbianScore   float64   `json:"hebbianScore" yaml:"hebbianScore"`
	EvidenceCount  int       `json:"evidenceCount" yaml:"evidenceCount"`
	Status         Status    `json:"status" yaml:"status"`
	LastCalculated time.Time `json:"lastCalculated" yaml:"lastCalculated"`
}

// CorroborationLevel is the [0,1] level consumed by the consensus-valid blend.
func (p *PopperHebbianScore) CorroborationLevel() *float64 {
	if p == nil {
		return nil
	}
	level := p.HebbianScore
	return &level
}

// CorroborationFromSupport remaps a legacy [-1,1] support value into [0,1].
func CorroborationFromSupport(support float64) float64 {
	c := (support + 1) / 2
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// SupportFromCorroboration derives the legacy [-1,1] support mirror.
func SupportFromCorroboration(c float64) float64 {
	return 2*c - 1
}
