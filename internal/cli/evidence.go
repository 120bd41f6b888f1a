package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

var (
	evidenceParent string
	evidenceText   string
	evidenceType   string
	evidenceScore  float64
	evidenceID     string
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Work with evidence posted under options",
}

var evidencePostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post evidence under an option and update its corroboration",
	Long: `Post stores an evidence post under an option and recomputes the option's
corroboration score from all of its evidence.

Without --type the configured classifier labels the post. If no classifier
is configured, or it fails, the post counts as a neutral argument.

Example:
  consensus evidence post --parent opt-1 --text "A 2021 trial found a 12% drop"
  consensus evidence post --parent opt-1 --text "..." --type data --score 0.8`,
	Args: cobra.NoArgs,
	RunE: runEvidencePost,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidencePostCmd)

	evidencePostCmd.Flags().StringVar(&evidenceParent, "parent", "", "option the evidence targets")
	evidencePostCmd.Flags().StringVar(&evidenceText, "text", "", "evidence text (plain or HTML)")
	evidencePostCmd.Flags().StringVar(&evidenceType, "type", "", "evidence type (data, testimony, argument, anecdote, fallacy)")
	evidencePostCmd.Flags().Float64Var(&evidenceScore, "score", 0.5, "corroboration score in [0,1], used with --type")
	evidencePostCmd.Flags().StringVar(&evidenceID, "id", "", "evidence id (generated when empty; reuse to edit)")
	evidencePostCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	_ = evidencePostCmd.MarkFlagRequired("parent")
}

func runEvidencePost(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ev := model.Evidence{
		EvidenceID: evidenceID,
		ParentID:   evidenceParent,
		Text:       evidenceText,
	}
	if evidenceType != "" {
		ev.EvidenceType = model.EvidenceType(evidenceType)
		ev.CorroborationScore = evidenceScore
	}

	stored, scored, err := a.service.PostEvidence(cmd.Context(), currentCaller(), ev)
	if err != nil {
		return fmt.Errorf("post evidence: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, map[string]any{"evidence": stored, "popperHebbianScore": scored})
	}

	fmt.Fprintf(out, "✓ Evidence %s stored as %s (corroboration %.2f, weight %.1f)\n",
		stored.EvidenceID, stored.EvidenceType, stored.CorroborationScore, stored.EvidenceWeight)
	fmt.Fprintf(out, "  %s: hebbian %.4f from %d posts, %s\n",
		scored.StatementID, scored.HebbianScore, scored.EvidenceCount, scored.Status)
	return nil
}
