// Package store persists statements, evaluations and evidence. Reads return
// snapshots in a deterministic order; every derived-field write for one
// statement is applied atomically.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

// EvaluationStore reads and writes per-user evaluations.
type EvaluationStore interface {
	// ListByStatement returns every evaluation targeting statementID,
	// ordered by creation time then evaluator.
	ListByStatement(ctx context.Context, statementID string) ([]model.Evaluation, error)

	// ListByParent returns every evaluation whose parentId is parentID.
	ListByParent(ctx context.Context, parentID string) ([]model.Evaluation, error)

	// PutEvaluation inserts or replaces the evaluation keyed by
	// (statementId, evaluatorId).
	PutEvaluation(ctx context.Context, e model.Evaluation) error
}

// StatementStore reads statements and writes their derived fields.
type StatementStore interface {
	// GetStatement returns model.ErrNotFound when id is unknown.
	GetStatement(ctx context.Context, id string) (*model.Statement, error)

	// ListOptions returns the option children of a question.
	ListOptions(ctx context.Context, parentID string) ([]model.Statement, error)

	// ListIntegratedInto returns statements whose integratedInto is clusterID.
	ListIntegratedInto(ctx context.Context, clusterID string) ([]model.Statement, error)

	PutStatement(ctx context.Context, s model.Statement) error

	// UpdateDerived writes evaluation, consensus, consensusValid and the
	// mirrored totals in one update.
	UpdateDerived(ctx context.Context, id string, fields model.DerivedFields) error

	// UpdateParentTotal writes asParentTotalEvaluators on a question.
	UpdateParentTotal(ctx context.Context, id string, total int) error

	// UpdateClusterLinks records sourceIDs on the cluster, points each source
	// back at it and, when fields is non-nil, writes the cluster's derived
	// fields, all in one transaction.
	UpdateClusterLinks(ctx context.Context, clusterID string, sourceIDs []string, fields *model.DerivedFields) error

	// UpdateCorroboration writes the evidence score and the re-derived
	// consensusValid together.
	UpdateCorroboration(ctx context.Context, id string, score model.PopperHebbianScore, consensusValid float64) error
}

// EvidenceStore reads and writes evidence posts.
type EvidenceStore interface {
	// ListEvidence returns evidence under parentID ordered by creation
	// time then id.
	ListEvidence(ctx context.Context, parentID string) ([]model.Evidence, error)

	// PutEvidence inserts or replaces evidence keyed by evidenceId.
	PutEvidence(ctx context.Context, ev model.Evidence) error
}

// Store is the full persistence surface.
type Store interface {
	EvaluationStore
	StatementStore
	EvidenceStore
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg model.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		return NewMemory(), nil
	case "sqlite", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver: %s (supported: memory, sqlite)", cfg.Driver)
	}
}

// Import validates a fixture and writes its statements and evaluations.
// Statements go first so evaluations always reference known statements.
// Evidence is not written here: it must be classified, weighted and folded
// into its option's score, which the corroboration engine does.
func Import(ctx context.Context, s Store, f model.Fixture) error {
	if err := f.Validate(); err != nil {
		return model.NewValidationError("INVALID_FIXTURE", err.Error())
	}
	for _, st := range f.Statements {
		if err := s.PutStatement(ctx, st); err != nil {
			return err
		}
	}
	for _, e := range f.Evaluations {
		if err := s.PutEvaluation(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
