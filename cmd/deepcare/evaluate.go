package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/deepcare-go/pkg/dataset"
	"github.com/scttfrdmn/deepcare-go/pkg/evaluate"
	"github.com/scttfrdmn/deepcare-go/pkg/storage"
)

var jsonReport bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <dataset> <predictions.csv>",
	Short: "Score model predictions against a dataset",
	Long: `Compare a predictions table with a dataset's index and report the
overall and per-class accuracy.

The predictions table has a header row followed by "<img_name>,<label>"
rows, using the same label codes as the dataset's train_labels.csv.

Example:
  deepcare evaluate datasets/w51_h100/validation predictions.csv`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := dataset.OpenDataset(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to open dataset: %w", err)
		}

		f, err := storage.OpenReader(args[1])
		if err != nil {
			return fmt.Errorf("failed to open predictions: %w", err)
		}
		defer f.Close()

		preds, err := evaluate.ReadPredictions(f)
		if err != nil {
			return err
		}

		report, err := evaluate.Evaluate(reader.Index(), preds)
		if err != nil {
			return err
		}

		if jsonReport {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("Accuracy: %d / %d (%.2f%%)\n", report.Correct, report.Total, report.Accuracy*100)
		if report.Missing > 0 {
			fmt.Printf("Images without a prediction: %d\n", report.Missing)
		}
		fmt.Println("Per class:")
		for _, c := range report.Classes {
			fmt.Printf("  Label %d: %d / %d (%.2f%%)\n", c.Label, c.Correct, c.Total, c.Accuracy*100)
		}
		return nil
	},
}

func init() {
	evaluateCmd.Flags().BoolVar(&jsonReport, "json", false,
		"Print the report as JSON")
}
