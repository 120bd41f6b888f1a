package corroborate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/delib-org/Freedi-app-sub004/internal/classify"
	"github.com/delib-org/Freedi-app-sub004/internal/logging"
	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/score"
)

// Statements is the statement access the engine needs.
type Statements interface {
	GetStatement(ctx context.Context, id string) (*model.Statement, error)
	UpdateCorroboration(ctx context.Context, id string, s model.PopperHebbianScore, consensusValid float64) error
}

// EvidenceRecords is the evidence access the engine needs.
type EvidenceRecords interface {
	ListEvidence(ctx context.Context, parentID string) ([]model.Evidence, error)
	PutEvidence(ctx context.Context, ev model.Evidence) error
}

// Classifier labels evidence. Errors are treated as the neutral fallback.
type Classifier interface {
	Classify(ctx context.Context, req classify.Request) (*classify.Result, error)
}

// Engine keeps each option's PopperHebbianScore in step with its evidence.
type Engine struct {
	statements Statements
	evidence   EvidenceRecords
	classifier Classifier
	scorer     *score.Scorer
	prior      float64
	logger     *logging.Logger
	now        func() time.Time
}

// NewEngine builds an engine. A nil classifier treats unclassified evidence
// as a neutral argument.
func NewEngine(statements Statements, evidence EvidenceRecords, classifier Classifier, scorer *score.Scorer, prior float64, logger *logging.Logger) *Engine {
	if prior <= 0 || prior >= 1 {
		prior = Prior
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if scorer == nil {
		scorer = score.NewScorer(model.ScoringConfig{})
	}
	return &Engine{
		statements: statements,
		evidence:   evidence,
		classifier: classifier,
		scorer:     scorer,
		prior:      prior,
		logger:     logger,
		now:        time.Now,
	}
}

// PostEvidence stores a new or edited evidence post and recomputes the
// parent option. Evidence without a type is classified first; a
// classifier failure yields the neutral default and never an error.
func (e *Engine) PostEvidence(ctx context.Context, ev model.Evidence) (*model.Evidence, *model.PopperHebbianScore, error) {
	stored, err := e.put(ctx, ev)
	if err != nil {
		return nil, nil, err
	}

	result, err := e.Recompute(ctx, stored.ParentID)
	if err != nil {
		return stored, nil, err
	}
	return stored, result, nil
}

// ImportEvidence stores a batch of evidence posts the same way PostEvidence
// does, then recomputes every option they touch once, in first-seen order.
func (e *Engine) ImportEvidence(ctx context.Context, items []model.Evidence) ([]model.PopperHebbianScore, error) {
	var parents []string
	seen := make(map[string]bool)
	for _, ev := range items {
		stored, err := e.put(ctx, ev)
		if err != nil {
			return nil, err
		}
		if !seen[stored.ParentID] {
			seen[stored.ParentID] = true
			parents = append(parents, stored.ParentID)
		}
	}

	scores := make([]model.PopperHebbianScore, 0, len(parents))
	for _, id := range parents {
		result, err := e.Recompute(ctx, id)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *result)
	}
	return scores, nil
}

// put classifies, weights and stores one evidence post.
func (e *Engine) put(ctx context.Context, ev model.Evidence) (*model.Evidence, error) {
	if ev.ParentID == "" {
		return nil, model.NewValidationError("MISSING_FIELD", "evidence missing parentId")
	}

	parent, err := e.statements.GetStatement(ctx, ev.ParentID)
	if err != nil {
		return nil, err
	}

	if ev.EvidenceID == "" {
		ev.EvidenceID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = e.now().UTC()
	}

	if !ev.Classified() {
		verdict := e.classify(ctx, ev, parent.Text)
		ev.EvidenceType = verdict.EvidenceType
		ev.CorroborationScore = verdict.CorroborationScore
	} else if t, ok := model.ParseEvidenceType(string(ev.EvidenceType)); ok {
		ev.EvidenceType = t
	} else {
		return nil, model.NewValidationError("UNKNOWN_EVIDENCE_TYPE", "unknown evidence type "+string(ev.EvidenceType))
	}

	ev.CorroborationScore = clamp(ev.CorroborationScore, 0, 1)
	ev.EvidenceWeight = Weight(ev.EvidenceType)
	ev.Support = model.SupportFromCorroboration(ev.CorroborationScore)

	if err := e.evidence.PutEvidence(ctx, ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (e *Engine) classify(ctx context.Context, ev model.Evidence, parentText string) *classify.Result {
	if e.classifier == nil {
		return classify.Fallback()
	}
	verdict, err := e.classifier.Classify(ctx, classify.Request{EvidenceText: ev.Text, ParentText: parentText})
	if err != nil || verdict == nil {
		e.logger.WithStatement(ev.ParentID).Warn("evidence classification failed, using neutral default", "error", err)
		return classify.Fallback()
	}
	if _, ok := model.ParseEvidenceType(string(verdict.EvidenceType)); !ok {
		return classify.Fallback()
	}
	return verdict
}

// Recompute folds every evidence child of the option from the prior and
// writes the score together with the re-derived consensusValid.
func (e *Engine) Recompute(ctx context.Context, optionID string) (*model.PopperHebbianScore, error) {
	option, err := e.statements.GetStatement(ctx, optionID)
	if err != nil {
		return nil, err
	}

	items, err := e.evidence.ListEvidence(ctx, optionID)
	if err != nil {
		return nil, err
	}

	hebbian := Fold(items, e.prior)
	result := model.PopperHebbianScore{
		StatementID:    optionID,
		HebbianScore:   hebbian,
		EvidenceCount:  len(items),
		Status:         score.ClassifyStatus(hebbian),
		LastCalculated: e.now().UTC(),
	}
	consensusValid := e.scorer.ConsensusValid(option.Consensus, &hebbian)

	if err := e.statements.UpdateCorroboration(ctx, optionID, result, consensusValid); err != nil {
		return nil, err
	}

	e.logger.WithStatement(optionID).Debug("corroboration recomputed",
		"hebbian_score", hebbian,
		"evidence_count", len(items),
		"status", result.Status,
	)
	return &result, nil
}
