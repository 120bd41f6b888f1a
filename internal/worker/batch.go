package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

// Runner recalculates one question
type Runner interface {
	Run(ctx context.Context, questionID string, dryRun bool) (*model.RecalcSummary, error)
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, questionID string, dryRun bool) (*model.RecalcSummary, error)

// Run calls f
func (f RunnerFunc) Run(ctx context.Context, questionID string, dryRun bool) (*model.RecalcSummary, error) {
	return f(ctx, questionID, dryRun)
}

// RecalcJob recalculates a single question
type RecalcJob struct {
	Index      int
	QuestionID string
	DryRun     bool
	Runner     Runner
}

// Execute executes the recalculation job
func (j *RecalcJob) Execute(ctx context.Context) Result {
	summary, err := j.Runner.Run(ctx, j.QuestionID, j.DryRun)
	return &RecalcResult{
		index:      j.Index,
		QuestionID: j.QuestionID,
		Summary:    summary,
		Error:      err,
	}
}

// RecalcResult is the outcome for one question in a batch
type RecalcResult struct {
	index      int
	QuestionID string
	Summary    *model.RecalcSummary
	Error      error
}

// GetError returns the error from the recalculation
func (r *RecalcResult) GetError() error {
	return r.Error
}

// BatchProcessor recalculates many questions concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessQuestions runs every question and returns results in input order
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questionIDs []string, dryRun bool) []*RecalcResult {
	if len(questionIDs) == 0 {
		return []*RecalcResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	out := make([]*RecalcResult, len(questionIDs))
	for i, id := range questionIDs {
		if !pool.Submit(&RecalcJob{Index: i, QuestionID: id, DryRun: dryRun, Runner: b.runner}) {
			out[i] = &RecalcResult{index: i, QuestionID: id, Error: ctx.Err()}
		}
	}

	for _, r := range pool.Wait() {
		rr := r.(*RecalcResult)
		out[rr.index] = rr
	}

	for i, r := range out {
		if r == nil {
			out[i] = &RecalcResult{index: i, QuestionID: questionIDs[i], Error: context.Canceled}
		}
	}

	return out
}

// ProcessFile reads question ids from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, dryRun bool) ([]*RecalcResult, error) {
	ids, err := ReadIDsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read question ids: %w", err)
	}

	return b.ProcessQuestions(ctx, ids, dryRun), nil
}

// ReadIDsFromFile reads ids from a file, one per line. Blank lines and
// lines starting with # are skipped; duplicates keep their first position.
func ReadIDsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}
