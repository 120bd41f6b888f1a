// Package service exposes the authorized entry points: question
// recalculation, cluster repair, evidence posting and fixture import.
package service

import (
	"context"

	"github.com/delib-org/Freedi-app-sub004/internal/aggregate"
	"github.com/delib-org/Freedi-app-sub004/internal/corroborate"
	"github.com/delib-org/Freedi-app-sub004/internal/logging"
	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/recalc"
	"github.com/delib-org/Freedi-app-sub004/internal/score"
	"github.com/delib-org/Freedi-app-sub004/internal/store"
	"github.com/delib-org/Freedi-app-sub004/internal/worker"
)

// Caller identifies who invokes an entry point. Authentication happens
// upstream; only the identity is consumed here.
type Caller struct {
	ID    string
	Admin bool
}

// CanAdminister reports whether the caller may repair st.
func (c Caller) CanAdminister(st *model.Statement) bool {
	if c.Admin {
		return true
	}
	return c.ID != "" && c.ID == st.CreatorID
}

// RecalcRequest asks for a recalculation of every option under a question.
type RecalcRequest struct {
	StatementID string `json:"statementId"`
	DryRun      bool   `json:"dryRun,omitempty"`
}

// FixClusterRequest asks for a cluster to be rebuilt from explicit sources.
type FixClusterRequest struct {
	ClusterID string   `json:"clusterId"`
	SourceIDs []string `json:"sourceIds"`
	DryRun    bool     `json:"dryRun,omitempty"`
}

// Options configures a Service.
type Options struct {
	Scoring    model.ScoringConfig
	Workers    int
	Classifier corroborate.Classifier // nil classifies everything as the neutral default
	Logger     *logging.Logger
}

// Service wires the scoring core to a store.
type Service struct {
	store        store.Store
	aggregator   *aggregate.Aggregator
	orchestrator *recalc.Orchestrator
	engine       *corroborate.Engine
	logger       *logging.Logger
}

// New creates a service over st.
func New(st store.Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	scorer := score.NewScorer(opts.Scoring)
	return &Service{
		store:        st,
		aggregator:   aggregate.New(st, st, scorer, logger),
		orchestrator: recalc.New(st, scorer, opts.Workers, logger),
		engine:       corroborate.NewEngine(st, st, opts.Classifier, scorer, opts.Scoring.Prior, logger),
		logger:       logger,
	}
}

// Recalculate repairs the derived fields of every option under the
// requested question. Partial failures come back inside the summary.
func (s *Service) Recalculate(ctx context.Context, caller Caller, req RecalcRequest) (*model.RecalcSummary, error) {
	if req.StatementID == "" {
		return nil, model.NewValidationError("MISSING_FIELD", "statementId is required")
	}

	if _, err := s.authorize(ctx, caller, req.StatementID); err != nil {
		return nil, err
	}

	return s.orchestrator.Run(ctx, req.StatementID, req.DryRun)
}

// FixCluster recomputes a cluster from the given sources and persists the
// linkage together with the new aggregate.
func (s *Service) FixCluster(ctx context.Context, caller Caller, req FixClusterRequest) (*model.ClusterFixResult, error) {
	if req.ClusterID == "" {
		return nil, model.NewValidationError("MISSING_FIELD", "clusterId is required")
	}
	if !hasSource(req.SourceIDs, req.ClusterID) {
		return nil, model.NewValidationError("MISSING_FIELD", "sourceIds must name at least one statement other than the cluster")
	}

	cluster, err := s.authorize(ctx, caller, req.ClusterID)
	if err != nil {
		return nil, err
	}

	for _, id := range req.SourceIDs {
		if id == "" || id == req.ClusterID {
			continue
		}
		if _, err := s.store.GetStatement(ctx, id); err != nil {
			return nil, err
		}
	}

	res, err := s.aggregator.AggregateCluster(ctx, req.ClusterID, req.SourceIDs)
	if err != nil {
		return nil, err
	}

	before := model.DerivedFieldsOf(*cluster)
	out := &model.ClusterFixResult{
		ClusterID:  req.ClusterID,
		SourceIDs:  res.SourceIDs,
		DryRun:     req.DryRun,
		Before:     before,
		After:      res.Fields,
		Changed:    !before.Equal(res.Fields),
		Evaluators: res.Evaluators,
	}

	log := s.logger.WithStatement(req.ClusterID)
	if req.DryRun {
		log.Info("cluster fix dry run", "sources", len(res.SourceIDs), "changed", out.Changed)
		return out, nil
	}

	fields := res.Fields
	if err := s.store.UpdateClusterLinks(ctx, req.ClusterID, res.SourceIDs, &fields); err != nil {
		return nil, model.NewStoreError("update cluster links", err)
	}
	out.LinksUpdated = true

	log.Info("cluster fixed", "sources", len(res.SourceIDs), "changed", out.Changed, "evaluators", res.Evaluators)
	return out, nil
}

// PostEvidence stores evidence under an option on behalf of the caller and
// returns the option's new corroboration score.
func (s *Service) PostEvidence(ctx context.Context, caller Caller, ev model.Evidence) (*model.Evidence, *model.PopperHebbianScore, error) {
	if caller.ID == "" {
		return nil, nil, model.NewValidationError("MISSING_FIELD", "caller id is required")
	}
	if ev.ParentID == "" {
		return nil, nil, model.NewValidationError("MISSING_FIELD", "evidence parentId is required")
	}
	if ev.CreatorID == "" {
		ev.CreatorID = caller.ID
	}
	return s.engine.PostEvidence(ctx, ev)
}

// ImportResult reports what ImportFixture wrote.
type ImportResult struct {
	Statements  int                        `json:"statements"`
	Evaluations int                        `json:"evaluations"`
	Evidence    int                        `json:"evidence"`
	Scores      []model.PopperHebbianScore `json:"scores,omitempty"`
}

// ImportFixture validates and loads a fixture. Evidence goes through the
// corroboration engine so every option with evidence leaves the import
// with a current PopperHebbianScore and consensusValid.
func (s *Service) ImportFixture(ctx context.Context, f model.Fixture) (*ImportResult, error) {
	if err := store.Import(ctx, s.store, f); err != nil {
		return nil, err
	}

	scores, err := s.engine.ImportEvidence(ctx, f.EvidenceRecords())
	if err != nil {
		return nil, err
	}

	s.logger.Info("fixture imported",
		"statements", len(f.Statements),
		"evaluations", len(f.Evaluations),
		"evidence", len(f.Evidence),
		"options_scored", len(scores),
	)
	return &ImportResult{
		Statements:  len(f.Statements),
		Evaluations: len(f.Evaluations),
		Evidence:    len(f.Evidence),
		Scores:      scores,
	}, nil
}

// Runner adapts Recalculate to the batch worker for a fixed caller.
func (s *Service) Runner(caller Caller) worker.Runner {
	return worker.RunnerFunc(func(ctx context.Context, questionID string, dryRun bool) (*model.RecalcSummary, error) {
		return s.Recalculate(ctx, caller, RecalcRequest{StatementID: questionID, DryRun: dryRun})
	})
}

func (s *Service) authorize(ctx context.Context, caller Caller, statementID string) (*model.Statement, error) {
	st, err := s.store.GetStatement(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAdminister(st) {
		s.logger.WithStatement(statementID).Warn("caller not authorized", "caller", caller.ID)
		return nil, model.NewAuthorizationError(caller.ID, statementID)
	}
	return st, nil
}

func hasSource(ids []string, self string) bool {
	for _, id := range ids {
		if id != "" && id != self {
			return true
		}
	}
	return false
}
