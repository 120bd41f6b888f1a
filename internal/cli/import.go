package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

var importCmd = &cobra.Command{
	Use:   "import <fixture.yaml>",
	Short: "Load statements, evaluations and evidence into the store",
	Long: `Import reads a YAML (or JSON) fixture with top-level statements,
evaluations and evidence lists, validates every record and writes them to
the configured store. Existing records with the same ids are replaced.

Evidence is classified when it has no evidenceType, weighted by type and
folded into its option's corroboration score. Records that only carry the
legacy support value in [-1,1] are remapped to a corroborationScore.

Example:
  consensus import seed.yaml --db ./consensus.db`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	fixture, err := readFixture(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.service.ImportFixture(cmd.Context(), *fixture)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d statements, %d evaluations, %d evidence posts (%d options scored)\n",
		res.Statements, res.Evaluations, res.Evidence, len(res.Scores))
	return nil
}

func readFixture(path string) (*model.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f model.Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}
