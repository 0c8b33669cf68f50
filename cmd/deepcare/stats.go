package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/deepcare-go/pkg/dataset"
)

var verifyImages bool

var statsCmd = &cobra.Command{
	Use:   "stats <dataset>",
	Short: "Show statistics for a dataset",
	Long: `Display statistics for a generated or merged dataset.

Statistics are read from the metadata file and the index table without
decoding the images. With --verify every image listed in the index is
decoded and its shape checked against the dataset configuration.

Example:
  deepcare stats datasets/w51_h100/part_0_9`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetPath := args[0]

		reader, err := dataset.OpenDataset(cmd.Context(), datasetPath)
		if err != nil {
			return fmt.Errorf("failed to open dataset: %w", err)
		}

		metadata := reader.Metadata()
		index := reader.Index()

		fmt.Println("===========================================")
		fmt.Println("DeepCare Dataset Statistics")
		fmt.Println("===========================================")
		fmt.Println()
		if metadata.Format != "" {
			fmt.Printf("Format: %s v%s\n", metadata.Format, metadata.Version)
			fmt.Printf("Created: %s\n", metadata.Created.Format("2006-01-02 15:04:05"))
			fmt.Printf("Created by: %s\n", metadata.CreatedBy)
			if metadata.Source.Reference != "" {
				fmt.Printf("Reference reads: %s\n", metadata.Source.Reference)
			}
			if n := len(metadata.Source.MSAFiles); n > 0 {
				fmt.Printf("Inputs: %d\n", n)
			}
			fmt.Println()
		}

		if metadata.Config.Height > 0 {
			fmt.Println("Configuration:")
			fmt.Printf("  Window: %d x %d\n", metadata.Config.Height, metadata.Config.Width)
			fmt.Printf("  Seed: %d\n", metadata.Config.Seed)
			fmt.Printf("  Label scheme: %s\n", metadata.Config.Scheme)
			fmt.Println()
		}

		if metadata.Stats.Blocks > 0 {
			stats := metadata.Stats
			fmt.Println("Generation:")
			fmt.Printf("  MSA files: %d\n", stats.Files)
			fmt.Printf("  Blocks: %d\n", stats.Blocks)
			fmt.Printf("  Erroneous blocks: %d (%.2f%%)\n", stats.Erroneous,
				float64(stats.Erroneous)/float64(stats.Blocks)*100)
			fmt.Printf("  Stopped at limit: %t\n", stats.Stopped)
			fmt.Println()

			fmt.Println("Buckets (accumulated / retained):")
			for _, b := range dataset.Bases {
				base := b.String()
				fmt.Printf("  %s clean: %d / %d   erroneous: %d / %d\n", base,
					stats.Accumulated.Clean[base], stats.Retained.Clean[base],
					stats.Accumulated.Erroneous[base], stats.Retained.Erroneous[base])
			}
			fmt.Println()
		}

		fmt.Println("Index:")
		fmt.Printf("  Examples: %d\n", len(index))
		counts := reader.LabelCounts()
		labels := make([]int, 0, len(counts))
		for l := range counts {
			labels = append(labels, l)
		}
		sort.Ints(labels)
		for _, l := range labels {
			fmt.Printf("  Label %d: %d\n", l, counts[l])
		}

		if verifyImages {
			fmt.Println()
			return verify(reader, metadata)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&verifyImages, "verify", false,
		"Decode every indexed image and check its shape")
}

func verify(reader *dataset.Reader, metadata dataset.Metadata) error {
	for _, e := range reader.Index() {
		w, err := reader.Window(e.Name)
		if err != nil {
			return err
		}
		if metadata.Config.Height > 0 && (w.Height != metadata.Config.Height || w.Width != metadata.Config.Width) {
			return fmt.Errorf("%s: window is %dx%d, dataset is %dx%d", e.Name,
				w.Height, w.Width, metadata.Config.Height, metadata.Config.Width)
		}
	}
	fmt.Printf("✓ Verified %d images\n", len(reader.Index()))
	return nil
}
