// Package recalc repairs the derived fields of every option under a
// question by recomputing them from raw evaluations.
package recalc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/delib-org/Freedi-app-sub004/internal/aggregate"
	"github.com/delib-org/Freedi-app-sub004/internal/logging"
	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/score"
	"github.com/delib-org/Freedi-app-sub004/internal/worker"
)

// Store is the persistence the orchestrator reads and repairs.
type Store interface {
	aggregate.StatementReader
	aggregate.EvaluationReader
	ListOptions(ctx context.Context, parentID string) ([]model.Statement, error)
	ListByParent(ctx context.Context, parentID string) ([]model.Evaluation, error)
	UpdateDerived(ctx context.Context, id string, fields model.DerivedFields) error
	UpdateParentTotal(ctx context.Context, id string, total int) error
}

// Orchestrator runs one recalculation pass per question.
type Orchestrator struct {
	store      Store
	aggregator *aggregate.Aggregator
	workers    int
	logger     *logging.Logger
	now        func() time.Time
}

// New creates an orchestrator aggregating up to workers options at once.
func New(store Store, scorer *score.Scorer, workers int, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		store:      store,
		aggregator: aggregate.New(store, store, scorer, logger),
		workers:    workers,
		logger:     logger,
		now:        time.Now,
	}
}

// Run recomputes every option of questionID. Mismatched options get one
// combined write each unless dryRun is set. Per-option failures land in
// the summary's Errors and do not stop the pass; only a missing or
// unreadable question fails the call.
func (o *Orchestrator) Run(ctx context.Context, questionID string, dryRun bool) (*model.RecalcSummary, error) {
	if questionID == "" {
		return nil, model.NewValidationError("MISSING_FIELD", "question id is required")
	}

	started := o.now()
	summary := &model.RecalcSummary{
		RunID:      uuid.NewString(),
		QuestionID: questionID,
		DryRun:     dryRun,
		Diffs:      []model.OptionDiff{},
		Errors:     []model.OptionError{},
		StartedAt:  started,
	}
	log := o.logger.WithRun(summary.RunID).WithQuestion(questionID)

	question, err := o.store.GetStatement(ctx, questionID)
	if err != nil {
		return nil, err
	}

	options, err := o.store.ListOptions(ctx, questionID)
	if err != nil {
		return nil, model.NewStoreError("list options", err)
	}

	log.Info("recalculation started", "options", len(options), "dry_run", dryRun)

	for _, r := range o.recomputeAll(ctx, options, dryRun) {
		switch {
		case r.err != nil:
			summary.Errors = append(summary.Errors, optionError(r.statementID, r.err))
			log.Warn("option failed", "statement_id", r.statementID, "error", r.err)
		case r.diff == nil:
			summary.Processed++
			summary.Unchanged++
		default:
			summary.Processed++
			summary.Mismatched++
			if r.diff.Applied {
				summary.Fixed++
			}
			summary.Diffs = append(summary.Diffs, *r.diff)
		}
	}

	o.repairParentTotal(ctx, question, summary)

	sort.Slice(summary.Diffs, func(i, j int) bool {
		return summary.Diffs[i].StatementID < summary.Diffs[j].StatementID
	})
	sort.Slice(summary.Errors, func(i, j int) bool {
		return summary.Errors[i].StatementID < summary.Errors[j].StatementID
	})
	summary.Duration = o.now().Sub(started)

	log.Info("recalculation finished",
		"processed", summary.Processed,
		"mismatched", summary.Mismatched,
		"fixed", summary.Fixed,
		"errors", len(summary.Errors),
		"duration", summary.Duration,
	)
	return summary, nil
}

func (o *Orchestrator) recomputeAll(ctx context.Context, options []model.Statement, dryRun bool) []*optionResult {
	out := make([]*optionResult, 0, len(options))
	if len(options) == 0 {
		return out
	}

	pool := worker.NewPool(ctx, o.workers)
	pool.Start()

	for _, opt := range options {
		if !pool.Submit(&optionJob{orchestrator: o, option: opt, dryRun: dryRun}) {
			break
		}
	}

	done := make(map[string]bool, len(options))
	for _, r := range pool.Wait() {
		res := r.(*optionResult)
		done[res.statementID] = true
		out = append(out, res)
	}

	// Jobs dropped by cancellation never report back.
	for _, opt := range options {
		if !done[opt.StatementID] {
			out = append(out, &optionResult{statementID: opt.StatementID, err: fmt.Errorf("recalculate %s: %w", opt.StatementID, context.Cause(ctx))})
		}
	}
	return out
}

// recompute aggregates one option and writes the result when it differs
// from what is stored.
func (o *Orchestrator) recompute(ctx context.Context, stored model.Statement, dryRun bool) (*model.OptionDiff, error) {
	res, err := o.aggregator.Aggregate(ctx, stored.StatementID)
	if err != nil {
		return nil, err
	}

	before := model.DerivedFieldsOf(stored)
	if before.Equal(res.Fields) {
		return nil, nil
	}

	diff := &model.OptionDiff{
		StatementID: stored.StatementID,
		Cluster:     res.Cluster,
		Before:      before,
		After:       res.Fields,
	}
	if dryRun {
		return diff, nil
	}

	if err := o.store.UpdateDerived(ctx, stored.StatementID, res.Fields); err != nil {
		return nil, model.NewStoreError("update derived fields", err)
	}
	diff.Applied = true
	return diff, nil
}

func (o *Orchestrator) repairParentTotal(ctx context.Context, question *model.Statement, summary *model.RecalcSummary) {
	summary.ParentTotalBefore = question.AsParentTotalEvaluators
	summary.ParentTotalAfter = question.AsParentTotalEvaluators

	evals, err := o.store.ListByParent(ctx, question.StatementID)
	if err != nil {
		summary.Errors = append(summary.Errors, optionError(question.StatementID, model.NewStoreError("list evaluations by parent", err)))
		return
	}

	total := DistinctEvaluators(evals)
	summary.ParentTotalAfter = total
	if total == question.AsParentTotalEvaluators || summary.DryRun {
		return
	}

	if err := o.store.UpdateParentTotal(ctx, question.StatementID, total); err != nil {
		summary.Errors = append(summary.Errors, optionError(question.StatementID, model.NewStoreError("update parent total", err)))
		return
	}
	summary.ParentTotalFixed = true
}

// DistinctEvaluators counts evaluators holding at least one non-neutral
// evaluation in evals.
func DistinctEvaluators(evals []model.Evaluation) int {
	seen := make(map[string]bool, len(evals))
	for _, e := range evals {
		if e.IsNeutral() {
			continue
		}
		seen[e.EvaluatorID] = true
	}
	return len(seen)
}

func optionError(statementID string, err error) model.OptionError {
	return model.OptionError{
		StatementID: statementID,
		Category:    model.CategoryOf(err),
		Message:     err.Error(),
	}
}

type optionJob struct {
	orchestrator *Orchestrator
	option       model.Statement
	dryRun       bool
}

func (j *optionJob) Execute(ctx context.Context) worker.Result {
	diff, err := j.orchestrator.recompute(ctx, j.option, j.dryRun)
	if err != nil {
		err = fmt.Errorf("recalculate %s: %w", j.option.StatementID, err)
	}
	return &optionResult{statementID: j.option.StatementID, diff: diff, err: err}
}

type optionResult struct {
	statementID string
	diff        *model.OptionDiff
	err         error
}

func (r *optionResult) GetError() error {
	return r.err
}
