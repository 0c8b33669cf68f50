package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scttfrdmn/deepcare-go/pkg/dataset"
	"github.com/scttfrdmn/deepcare-go/pkg/reference"
)

var (
	referencePath string
	outputPath    string
	showConfig    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <msa files...> --reference <reads> --out <dataset>",
	Short: "Generate a balanced dataset from MSA dumps",
	Long: `Generate a class-balanced image dataset from MSA dump files.

Each alignment block yields one example: a window of the block centered on
the anchor read, either on a base where the anchor disagrees with its
error-free reference read (erroneous) or on the middle of the anchor
(clean). Examples are bucketed by label base and error state, and every
bucket is truncated to the size of the smallest one.

Inputs:
  MSA dumps may be plain, .gz or .zst compressed; glob patterns are expanded.
  Reference reads may be FASTQ, FASTA, SAM or BAM, in anchor read order.

Label schemes:
  base   - label is the true base, A=0 C=1 G=2 T=3 (default)
  binary - label is 1 for clean (cons) and 0 for erroneous (ncons) examples

Smart Defaults:
  Workers: Auto-detected from CPU count (performance cores when known)
  All settings can be overridden with flags or a --config settings file

Examples:
  # Generate a 100x51 dataset from a set of dump parts
  deepcare generate 'msa/part_*.msa.gz' -r reads.fq -o datasets/w51_h100/part_0_9

  # Stop after 5000 examples per class, write straight to S3
  deepcare generate msa/part_0.msa -r reads.fq -o s3://bucket/w51_h100 --max-per-class 5000

  # Show effective configuration
  deepcare generate --show-config --workers 8`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, "height", "width", "max-per-class", "seed", "workers", "scheme", "preview", "progress")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadGenerateConfig()
		if err != nil {
			return err
		}

		if showConfig {
			cfg.ShowConfig(os.Stdout)
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("at least one MSA file is required")
		}
		if referencePath == "" || outputPath == "" {
			return fmt.Errorf("--reference and --out are required")
		}

		return runGenerate(cmd, cfg, args)
	},
}

func init() {
	defaults := dataset.NewConfig()

	generateCmd.Flags().StringVarP(&referencePath, "reference", "r", "",
		"Error-free reference reads (FASTQ, FASTA, SAM or BAM; .gz allowed)")
	generateCmd.Flags().StringVarP(&outputPath, "out", "o", "",
		"Output dataset directory or s3://bucket/prefix")
	generateCmd.Flags().Int("height", defaults.Height,
		"Window height in alignment rows")
	generateCmd.Flags().Int("width", defaults.Width,
		"Window width in alignment columns")
	generateCmd.Flags().Int("max-per-class", defaults.MaxPerClass,
		"Stop once every bucket holds this many examples (0 = no limit)")
	generateCmd.Flags().Int64("seed", defaults.Seed,
		"Seed of the error column choice")
	generateCmd.Flags().Int("workers", 0,
		"Number of parallel workers (0 = auto-detect CPU count, 1 = sequential)")
	generateCmd.Flags().String("scheme", string(defaults.Scheme),
		"Label scheme: base, binary")
	generateCmd.Flags().Bool("preview", defaults.Preview,
		"Also write enlarged colour previews under preview/")
	generateCmd.Flags().Bool("progress", defaults.ShowProgress,
		"Show a progress bar while writing images")
	generateCmd.Flags().BoolVar(&showConfig, "show-config", false,
		"Show effective configuration (workers, memory, etc.)")
}

// loadGenerateConfig decodes the bound flags and settings file over the
// defaults. A worker count of 0 keeps the auto-detected default.
func loadGenerateConfig() (*dataset.Config, error) {
	cfg := dataset.NewConfig()
	detected := cfg.Workers
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = detected
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, cfg *dataset.Config, patterns []string) error {
	ctx := cmd.Context()
	start := time.Now()

	paths, err := expandInputs(patterns)
	if err != nil {
		return err
	}

	refs, err := reference.Load(referencePath)
	if err != nil {
		return fmt.Errorf("failed to load reference reads: %w", err)
	}

	fmt.Printf("Generating from %d MSA file(s) with %d worker(s)...\n", len(paths), cfg.Workers)

	var (
		acc   *dataset.Accumulator
		stats dataset.Stats
	)
	if cfg.Workers > 1 {
		acc, stats, err = dataset.GenerateParallel(ctx, cfg, refs, paths)
	} else {
		acc, stats, err = dataset.Generate(ctx, cfg, refs, paths)
	}
	if err != nil {
		return err
	}

	bal := acc.Finalize(cfg.MaxPerClass)
	if bal.PerBucket == 0 {
		log.WithField("accumulated", stats.Accumulated).Warn("at least one bucket is empty, the dataset holds no examples")
	}

	w, err := dataset.NewWriter(ctx, outputPath, *cfg)
	if err != nil {
		return fmt.Errorf("failed to create dataset writer: %w", err)
	}
	w.SetSource(dataset.Source{MSAFiles: paths, Reference: referencePath})
	w.SetStats(stats)

	fmt.Printf("Writing %d examples...\n", bal.Len())
	if err := w.WriteBalanced(bal); err != nil {
		return err
	}
	if err := w.Finalize(); err != nil {
		return err
	}

	fmt.Println("✓ Generation complete!")
	fmt.Printf("\nDataset summary:\n")
	fmt.Printf("  Location: %s\n", outputPath)
	fmt.Printf("  MSA files: %d\n", stats.Files)
	fmt.Printf("  Blocks: %d (%d erroneous)\n", stats.Blocks, stats.Erroneous)
	fmt.Printf("  Examples per bucket: %d\n", bal.PerBucket)
	fmt.Printf("  Examples: %d\n", bal.Len())
	if stats.Stopped {
		fmt.Printf("  Stopped early: every bucket reached %d\n", cfg.MaxPerClass)
	}
	fmt.Printf("  Time: %s\n", time.Since(start).Round(time.Millisecond))

	return nil
}
