package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "deepcare",
	Short: "DeepCare - training data for MSA-based read error correction",
	Long: `DeepCare turns multiple sequence alignments of sequencing reads into
class-balanced image datasets for training read error correction models.

This tool provides commands for generating datasets from MSA dumps,
merging generated datasets, inspecting them, and scoring model predictions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Settings file (YAML, JSON or TOML) with defaults for command flags")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log debug output")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the settings file named by --config, if any
func initConfig() {
	if configFile == "" {
		return
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("failed to read settings file %s: %v", configFile, err)
	}
	log.WithField("file", viper.ConfigFileUsed()).Debug("using settings file")
}

// bindFlags binds the named flags of cmd to viper keys of the same name.
// Commands bind in PreRunE since several of them share key names.
func bindFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// expandInputs expands glob patterns; each pattern's matches are sorted, and
// a pattern without matches is an error.
func expandInputs(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no input matches %s", p)
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("deepcare-go version %s\n", version)
		fmt.Println("Balanced MSA image datasets for read error correction")
	},
}
