package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scttfrdmn/deepcare-go/pkg/dataset"
	"github.com/scttfrdmn/deepcare-go/pkg/storage"
)

var (
	mergeOut      string
	validationOut string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <dataset folders...> --out <merged>",
	Short: "Merge generated datasets into one",
	Long: `Merge several generated dataset folders into a single dataset.

Example images are copied to <out>/examples/ and renumbered with one counter
per base, and a new train_labels.csv is written. Local glob patterns are
expanded; s3:// folders are used as given.

With --split, the input folders are sorted, shuffled with --seed and divided
into a training set (the first ceil(n*split) folders, merged into --out) and
a validation set (merged into --validation-out).

Examples:
  # Merge all parts of a run
  deepcare merge 'datasets/w51_h100/part_*' --out datasets/w51_h100/merged

  # Binary datasets with an 80/20 folder split
  deepcare merge 'binary/w1_h151/*' --scheme binary --split 0.8 \
    --out binary/training --validation-out binary/validation`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, "scheme", "seed", "split", "progress")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if mergeOut == "" {
			return fmt.Errorf("--out is required")
		}

		folders, err := expandFolders(args)
		if err != nil {
			return err
		}

		opts := dataset.MergeOptions{
			Scheme:       dataset.LabelScheme(viper.GetString("scheme")),
			ShowProgress: viper.GetBool("progress"),
		}

		split := viper.GetFloat64("split")
		if split <= 0 {
			opts.Folders = folders
			opts.Output = mergeOut
			return runMerge(cmd, opts)
		}

		training, validation, err := dataset.SplitFolders(folders, split, viper.GetInt64("seed"))
		if err != nil {
			return err
		}
		if len(validation) > 0 && validationOut == "" {
			return fmt.Errorf("--validation-out is required when --split leaves validation folders")
		}

		fmt.Printf("Split %d folders: %d training, %d validation\n", len(folders), len(training), len(validation))

		opts.Folders = training
		opts.Output = mergeOut
		if err := runMerge(cmd, opts); err != nil {
			return err
		}

		if len(validation) == 0 {
			return nil
		}
		opts.Folders = validation
		opts.Output = validationOut
		return runMerge(cmd, opts)
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "",
		"Merged dataset directory or s3://bucket/prefix")
	mergeCmd.Flags().StringVar(&validationOut, "validation-out", "",
		"Merged validation dataset when --split is set")
	mergeCmd.Flags().String("scheme", string(dataset.SchemeBase),
		"Label scheme: base, binary")
	mergeCmd.Flags().Float64("split", 0,
		"Fraction of folders for training, the rest go to validation (0 = no split)")
	mergeCmd.Flags().Int64("seed", 1,
		"Seed of the folder shuffle")
	mergeCmd.Flags().Bool("progress", true,
		"Show a progress bar while copying images")
}

// expandFolders expands local glob patterns and keeps s3:// URIs as given
func expandFolders(patterns []string) ([]string, error) {
	var folders []string
	for _, p := range patterns {
		if storage.IsS3URI(p) {
			folders = append(folders, p)
			continue
		}
		matches, err := expandInputs([]string{p})
		if err != nil {
			return nil, err
		}
		folders = append(folders, matches...)
	}
	return folders, nil
}

func runMerge(cmd *cobra.Command, opts dataset.MergeOptions) error {
	fmt.Printf("Merging %d folder(s) into %s...\n", len(opts.Folders), opts.Output)

	res, err := dataset.Merge(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Println("✓ Merge complete!")
	fmt.Printf("  Examples: %d\n", res.Examples)
	for _, b := range dataset.Bases {
		fmt.Printf("  %s: %d\n", b, res.PerBase[b.String()])
	}
	return nil
}
