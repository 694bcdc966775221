package cli

import (
	"fmt"
	"os"

	"github.com/fieldmark/relabel/internal/engine"
	"github.com/fieldmark/relabel/internal/groundtruth"
	"github.com/fieldmark/relabel/internal/labeldoc"
	"github.com/fieldmark/relabel/internal/pipeline"
	"github.com/fieldmark/relabel/internal/validate"
	"github.com/spf13/cobra"
)

var (
	gtPath     string
	outPath    string
	reportPath string
)

// correctCmd represents the correct command
var correctCmd = &cobra.Command{
	Use:   "correct <labels.json>",
	Short: "Correct a single label document against a ground-truth CSV",
	Long: `Correct one label document in place against a ground-truth table:
- Load the ground-truth CSV (fatal on schema/duplicate-key errors)
- Parse the label document into per-record groups
- Rewrite measurement values to match the ground truth
- Validate the result and write the corrected document

Example:
  relabel correct sheet.pdf.labels.json --ground-truth gt.csv
  relabel correct sheet.pdf.labels.json --ground-truth gt.csv -o corrected.json --report report.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

func init() {
	rootCmd.AddCommand(correctCmd)

	correctCmd.Flags().StringVar(&gtPath, "ground-truth", "", "ground-truth CSV path (required)")
	correctCmd.Flags().StringVarP(&outPath, "output", "o", "", "output path (default: overwrite input)")
	correctCmd.Flags().StringVar(&reportPath, "report", "", "correction report CSV path (default: none)")
	_ = correctCmd.MarkFlagRequired("ground-truth")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	labelsPath := args[0]

	table, err := loadTable(gtPath)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(labelsPath)
	if err != nil {
		return fmt.Errorf("read labels: %w", err)
	}

	doc, err := labeldoc.Parse(raw)
	if err != nil {
		return err
	}

	result := engine.New(table).Correct(doc)

	violations, err := validate.New().Validate(doc, result)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "✗ group %d: %s\n", v.GroupIndex, v.Message)
		}
		return fmt.Errorf("document failed validation with %d violation(s)", len(violations))
	}

	out, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	target := outPath
	if target == "" {
		target = labelsPath
	}
	if err := os.WriteFile(target, out, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if reportPath != "" && len(result.Corrections) > 0 {
		report, err := pipeline.ReportCSV(result.Corrections)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		if err := os.WriteFile(reportPath, report, 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if verbose {
		for _, g := range result.Groups {
			switch {
			case g.Matched:
				fmt.Fprintf(os.Stderr, "✓ group %d %s: %d corrected, %d unresolved\n",
					g.GroupIndex, g.Key, g.FieldsCorrected, g.FieldsUnresolved)
			case g.Key != nil:
				fmt.Fprintf(os.Stderr, "⚠ group %d: no ground truth for %s\n", g.GroupIndex, g.Key)
			default:
				fmt.Fprintf(os.Stderr, "⚠ group %d: key fields missing\n", g.GroupIndex)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "✓ %s: %d matched, %d unmatched, %d fields corrected\n",
		labelsPath, result.MatchedGroups(), result.UnmatchedGroups(), len(result.Corrections))

	return nil
}

// loadTable loads a ground-truth CSV, reporting skipped rows.
func loadTable(path string) (*groundtruth.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := groundtruth.Load(f)
	if err != nil {
		return nil, err
	}

	for _, line := range table.SkippedRows {
		fmt.Fprintf(os.Stderr, "⚠ %s: line %d skipped (blank identifier or path)\n", path, line)
	}

	return table, nil
}
