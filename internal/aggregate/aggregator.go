package aggregate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/delib-org/Freedi-app-sub004/internal/logging"
	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/score"
)

// StatementReader is the statement access the aggregator needs.
type StatementReader interface {
	GetStatement(ctx context.Context, id string) (*model.Statement, error)
	ListIntegratedInto(ctx context.Context, clusterID string) ([]model.Statement, error)
}

// EvaluationReader is the evaluation access the aggregator needs.
type EvaluationReader interface {
	ListByStatement(ctx context.Context, statementID string) ([]model.Evaluation, error)
}

// Result is the recomputed state of one option.
type Result struct {
	StatementID string                   `json:"statementId"`
	Cluster     bool                     `json:"cluster"`
	SourceIDs   []string                 `json:"sourceIds,omitempty"`
	Evaluators  int                      `json:"evaluators"` // distinct evaluators seen, neutral included
	Fields      model.DerivedFields      `json:"fields"`
	Breakdown   score.AgreementBreakdown `json:"breakdown"`
}

// Aggregator recomputes derived fields from a snapshot read of evaluations.
// It never writes.
type Aggregator struct {
	statements  StatementReader
	evaluations EvaluationReader
	scorer      *score.Scorer
	logger      *logging.Logger
	fetchLimit  int
}

// New creates an aggregator.
func New(statements StatementReader, evaluations EvaluationReader, scorer *score.Scorer, logger *logging.Logger) *Aggregator {
	if scorer == nil {
		scorer = score.NewScorer(model.ScoringConfig{})
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aggregator{
		statements:  statements,
		evaluations: evaluations,
		scorer:      scorer,
		logger:      logger,
		fetchLimit:  8,
	}
}

// Aggregate recomputes statementID. Clusters are detected from
// integratedOptions, the isCluster flag, or sources pointing back through
// integratedInto.
func (a *Aggregator) Aggregate(ctx context.Context, statementID string) (*Result, error) {
	st, err := a.statements.GetStatement(ctx, statementID)
	if err != nil {
		return nil, err
	}

	sources, err := a.sourcesOf(ctx, st)
	if err != nil {
		return nil, err
	}

	if len(sources) > 0 || st.IsCluster {
		return a.aggregateCluster(ctx, st, sources)
	}
	return a.aggregateSimple(ctx, st)
}

// AggregateCluster runs cluster mode on clusterID with an explicit source
// list, regardless of the linkage currently stored.
func (a *Aggregator) AggregateCluster(ctx context.Context, clusterID string, sourceIDs []string) (*Result, error) {
	st, err := a.statements.GetStatement(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	return a.aggregateCluster(ctx, st, dedupe(sourceIDs, clusterID))
}

func (a *Aggregator) sourcesOf(ctx context.Context, st *model.Statement) ([]string, error) {
	if len(st.IntegratedOptions) > 0 {
		return dedupe(st.IntegratedOptions, st.StatementID), nil
	}

	linked, err := a.statements.ListIntegratedInto(ctx, st.StatementID)
	if err != nil {
		return nil, fmt.Errorf("reverse lookup sources of %s: %w", st.StatementID, err)
	}
	ids := make([]string, 0, len(linked))
	for _, s := range linked {
		ids = append(ids, s.StatementID)
	}
	return dedupe(ids, st.StatementID), nil
}

func (a *Aggregator) aggregateSimple(ctx context.Context, st *model.Statement) (*Result, error) {
	evals, err := a.evaluations.ListByStatement(ctx, st.StatementID)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(evals))
	seen := make(map[string]bool, len(evals))
	for _, e := range evals {
		if seen[e.EvaluatorID] {
			continue
		}
		seen[e.EvaluatorID] = true
		values = append(values, e.Value)
	}

	return a.finish(st, values, len(seen), false, nil), nil
}

func (a *Aggregator) aggregateCluster(ctx context.Context, st *model.Statement, sourceIDs []string) (*Result, error) {
	sources := make([][]model.Evaluation, len(sourceIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fetchLimit)
	for i, id := range sourceIDs {
		g.Go(func() error {
			evals, err := a.evaluations.ListByStatement(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch source %s: %w", id, err)
			}
			sources[i] = evals
			return nil
		})
	}
	var direct []model.Evaluation
	g.Go(func() error {
		evals, err := a.evaluations.ListByStatement(gctx, st.StatementID)
		if err != nil {
			return fmt.Errorf("fetch direct evaluations: %w", err)
		}
		direct = evals
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := MergeCluster(sources, direct)

	a.logger.WithStatement(st.StatementID).Debug("cluster merged",
		"sources", len(sourceIDs),
		"evaluators", len(merged),
	)

	return a.finish(st, Values(merged), len(merged), true, sourceIDs), nil
}

func (a *Aggregator) finish(st *model.Statement, values []float64, evaluators int, cluster bool, sourceIDs []string) *Result {
	counters := Accumulate(values)
	counters.EvaluationRandomNumber = st.Evaluation.EvaluationRandomNumber
	counters.Viewed = st.Evaluation.Viewed

	scored := a.scorer.Score(counters, st.PopperHebbianScore)
	counters.Agreement = scored.Agreement

	return &Result{
		StatementID: st.StatementID,
		Cluster:     cluster,
		SourceIDs:   sourceIDs,
		Evaluators:  evaluators,
		Breakdown:   scored.Breakdown,
		Fields: model.DerivedFields{
			Evaluation:      counters,
			Consensus:       scored.Consensus,
			ConsensusValid:  scored.ConsensusValid,
			TotalEvaluators: counters.NumberOfEvaluators,
			ProSum:          counters.SumPro,
			ConSum:          counters.SumCon,
		},
	}
}

// dedupe drops empty, repeated and self-referencing ids, keeping order.
func dedupe(ids []string, self string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == self || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
