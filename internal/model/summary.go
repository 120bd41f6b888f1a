package model

import "time"

// RecalcSummary is the structured result of one orchestrator pass over a
// question. It is returned even when some options failed.
type RecalcSummary struct {
	RunID      string `json:"runId"`
	QuestionID string `json:"questionId"`
	DryRun     bool   `json:"dryRun"`

	Processed  int `json:"processed"`  // options aggregated successfully
	Mismatched int `json:"mismatched"` // options whose stored fields differed
	Fixed      int `json:"fixed"`      // options actually written (0 in dry run)
	Unchanged  int `json:"unchanged"`

	Diffs  []OptionDiff  `json:"diffs"`
	Errors []OptionError `json:"errors"`

	ParentTotalBefore int  `json:"parentTotalEvaluatorsBefore"`
	ParentTotalAfter  int  `json:"parentTotalEvaluatorsAfter"`
	ParentTotalFixed  bool `json:"parentTotalFixed"`

	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// PartialFailure reports whether any option failed during the pass.
func (s *RecalcSummary) PartialFailure() bool {
	return len(s.Errors) > 0
}

// OptionDiff is the before/after view of one mismatched option
type OptionDiff struct {
	StatementID string        `json:"statementId"`
	Cluster     bool          `json:"cluster"`
	Before      DerivedFields `json:"before"`
	After       DerivedFields `json:"after"`
	Applied     bool          `json:"applied"`
}

// OptionError records a failure for a single option without aborting the batch
type OptionError struct {
	StatementID string        `json:"statementId"`
	Category    ErrorCategory `json:"category,omitempty"`
	Message     string        `json:"message"`
}

// ClusterFixResult is returned by the cluster-fix entry point
type ClusterFixResult struct {
	ClusterID    string        `json:"clusterId"`
	SourceIDs    []string      `json:"sourceIds"`
	DryRun       bool          `json:"dryRun"`
	Before       DerivedFields `json:"before"`
	After        DerivedFields `json:"after"`
	Changed      bool          `json:"changed"`
	LinksUpdated bool          `json:"linksUpdated"`
	Evaluators   int           `json:"evaluators"` // distinct evaluators in the merged set, neutral included
}
