package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/service"
)

var (
	dryRun     bool
	jsonOutput bool
	cmdTimeout time.Duration
	sourceIDs  []string
	showDiffs  bool
)

var recalcCmd = &cobra.Command{
	Use:   "recalc <questionId>",
	Short: "Recompute and repair every option under a question",
	Long: `Recalc rebuilds each option's evaluation counters from raw evaluations,
compares them with what is stored and writes one combined update for every
option that drifted. The question's distinct evaluator total is repaired
the same way.

Options that fail are listed in the summary; the rest are still fixed.

Example:
  consensus recalc q-123 --dry-run
  consensus recalc q-123 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRecalc,
}

var fixClusterCmd = &cobra.Command{
	Use:   "fix-cluster <clusterId>",
	Short: "Rebuild a cluster from explicit source options",
	Long: `Fix-cluster merges the evaluations of the given source options into the
cluster, lets evaluations made directly on the cluster override them, and
stores the recomputed aggregate together with the cluster linkage.

Example:
  consensus fix-cluster c-9 --sources a-1,a-2 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runFixCluster,
}

func init() {
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(fixClusterCmd)

	recalcCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report differences without writing")
	recalcCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the summary as JSON")
	recalcCmd.Flags().BoolVar(&showDiffs, "diffs", false, "print every before/after difference")
	recalcCmd.Flags().DurationVar(&cmdTimeout, "timeout", 5*time.Minute, "overall timeout")

	fixClusterCmd.Flags().StringSliceVar(&sourceIDs, "sources", nil, "source option ids (comma separated)")
	fixClusterCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the result without writing")
	fixClusterCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	fixClusterCmd.Flags().DurationVar(&cmdTimeout, "timeout", 5*time.Minute, "overall timeout")
}

func runRecalc(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.service.Recalculate(ctx, currentCaller(), service.RecalcRequest{StatementID: args[0], DryRun: dryRun})
	if err != nil {
		return fmt.Errorf("recalc %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, summary)
	}
	printSummary(out, summary, showDiffs)
	return nil
}

func runFixCluster(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.service.FixCluster(ctx, currentCaller(), service.FixClusterRequest{
		ClusterID: args[0],
		SourceIDs: sourceIDs,
		DryRun:    dryRun,
	})
	if err != nil {
		return fmt.Errorf("fix cluster %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, res)
	}

	printHeader(out, "Cluster "+res.ClusterID)
	fmt.Fprintf(out, "  Sources:      %s\n", strings.Join(res.SourceIDs, ", "))
	fmt.Fprintf(out, "  Evaluators:   %d\n", res.Evaluators)
	printFields(out, "Before", res.Before)
	printFields(out, "After", res.After)
	switch {
	case res.DryRun:
		fmt.Fprintf(out, "\n  Dry run, nothing written (changed: %v)\n", res.Changed)
	case res.LinksUpdated:
		fmt.Fprintf(out, "\n✓ Cluster linkage and aggregate stored\n")
	}
	return nil
}

func printSummary(w io.Writer, s *model.RecalcSummary, withDiffs bool) {
	title := "Recalculation " + s.QuestionID
	if s.DryRun {
		title += " (dry run)"
	}
	printHeader(w, title)
	fmt.Fprintf(w, "  Run:          %s\n", s.RunID)
	fmt.Fprintf(w, "  Processed:    %d\n", s.Processed)
	fmt.Fprintf(w, "  Mismatched:   %d\n", s.Mismatched)
	fmt.Fprintf(w, "  Fixed:        %d\n", s.Fixed)
	fmt.Fprintf(w, "  Unchanged:    %d\n", s.Unchanged)
	fmt.Fprintf(w, "  Errors:       %d\n", len(s.Errors))
	fmt.Fprintf(w, "  Parent total: %d -> %d", s.ParentTotalBefore, s.ParentTotalAfter)
	if s.ParentTotalFixed {
		fmt.Fprint(w, " (fixed)")
	}
	fmt.Fprintf(w, "\n  Duration:     %v\n", s.Duration.Round(time.Millisecond))

	if withDiffs {
		for _, d := range s.Diffs {
			fmt.Fprintf(w, "\n  %s", d.StatementID)
			if d.Cluster {
				fmt.Fprint(w, " [cluster]")
			}
			fmt.Fprintln(w)
			printFields(w, "Before", d.Before)
			printFields(w, "After", d.After)
		}
	}

	for _, e := range s.Errors {
		fmt.Fprintf(w, "✗ %s: %s\n", e.StatementID, e.Message)
	}
}

func printFields(w io.Writer, label string, f model.DerivedFields) {
	fmt.Fprintf(w, "  %-7s n=%d pro=%d con=%d sum=%.4f consensus=%.4f valid=%.4f\n",
		label+":",
		f.Evaluation.NumberOfEvaluators,
		f.Evaluation.NumberOfProEvaluators,
		f.Evaluation.NumberOfConEvaluators,
		f.Evaluation.SumEvaluations,
		f.Consensus,
		f.ConsensusValid,
	)
}
