package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/delib-org/Freedi-app-sub004/internal/score"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run the pure scoring formulas on raw numbers",
	Long: `Score exposes the scoring formulas without touching a store, which is
handy for checking a stored value by hand.`,
}

var scoreAgreementCmd = &cobra.Command{
	Use:   "agreement <sum> <sumSquared> <evaluators>",
	Short: "Confidence-adjusted agreement from aggregate sums",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := parseFloat("sum", args[0])
		if err != nil {
			return err
		}
		sumSq, err := parseFloat("sumSquared", args[1])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 0 {
			return fmt.Errorf("evaluators must be a non-negative integer, got %q", args[2])
		}

		b := score.BreakdownAgreement(sum, sumSq, n)
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), b)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "agreement:  %.6f\n", b.Agreement)
		fmt.Fprintf(out, "mean:       %.6f\n", b.Mean)
		fmt.Fprintf(out, "sem:        %.6f\n", b.SEM)
		fmt.Fprintf(out, "penalty:    %.6f\n", b.Penalty)
		fmt.Fprintf(out, "formula:    %s\n", b.Formula)
		return nil
	},
}

var scoreNormalizeCmd = &cobra.Command{
	Use:   "normalize <consensus>",
	Short: "Map a consensus value into (0,1)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseFloat("consensus", args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		factor := score.NewScorer(cfg.Scoring).SigmoidFactor()
		fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", score.NormalizeConsensus(c, factor))
		return nil
	},
}

var scoreStatusCmd = &cobra.Command{
	Use:   "status <hebbianScore>",
	Short: "Status label for a corroboration level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseFloat("hebbianScore", args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), score.ClassifyStatus(level))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.AddCommand(scoreAgreementCmd, scoreNormalizeCmd, scoreStatusCmd)
	scoreAgreementCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the breakdown as JSON")
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, s)
	}
	return v, nil
}
