package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/delib-org/Freedi-app-sub004/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Recalculate many questions from a file in parallel",
	Long: `Batch recalculates every question listed in the input file:
- One question id per line, blank lines and # comments ignored
- Duplicate ids are processed once
- Questions run in parallel with a configurable worker count
- One JSON summary per question is written to the output directory

Example:
  consensus batch questions.txt
  consensus batch questions.txt --concurrency 4 --output-dir ./summaries --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "questions recalculated at once")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./consensus-summaries", "output directory for summaries")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report differences without writing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	errOut := cmd.ErrOrStderr()
	printHeader(errOut, "Consensus Batch Recalculation")
	fmt.Fprintf(errOut, "  Input file:   %s\n", file)
	fmt.Fprintf(errOut, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(errOut, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(errOut, "  Dry run:      %v\n", dryRun)
	fmt.Fprintf(errOut, "  Timeout:      %v\n\n", batchTimeout)

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(a.service.Runner(currentCaller()), concurrency)
	results, err := processor.ProcessFile(ctx, file, dryRun)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	var succeeded, partial, failed, fixed int
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(errOut, "✗ %s: %v\n", result.QuestionID, result.Error)
			continue
		}

		s := result.Summary
		fixed += s.Fixed
		if s.PartialFailure() {
			partial++
		} else {
			succeeded++
		}

		path := filepath.Join(outputDir, sanitizeFilename(result.QuestionID)+".json")
		if err := writeJSONFile(path, s); err != nil {
			fmt.Fprintf(errOut, "✗ %s: failed to write summary: %v\n", result.QuestionID, err)
			continue
		}

		mark := "✓"
		if s.PartialFailure() {
			mark = "!"
		}
		fmt.Fprintf(errOut, "%s %s (mismatched %d, fixed %d, errors %d)\n", mark, result.QuestionID, s.Mismatched, s.Fixed, len(s.Errors))
	}

	printHeader(errOut, "Batch Complete")
	fmt.Fprintf(errOut, "  Total:     %d questions\n", len(results))
	fmt.Fprintf(errOut, "  Success:   %d\n", succeeded)
	fmt.Fprintf(errOut, "  Partial:   %d\n", partial)
	fmt.Fprintf(errOut, "  Failures:  %d\n", failed)
	fmt.Fprintf(errOut, "  Fixed:     %d options\n", fixed)
	fmt.Fprintf(errOut, "  Output:    %s\n\n", outputDir)

	return nil
}

func writeJSONFile(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return writeJSON(f, v)
}

// sanitizeFilename makes an id safe to use as a file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		s = "question"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
