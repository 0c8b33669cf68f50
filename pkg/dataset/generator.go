package dataset

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/scttfrdmn/deepcare-go/pkg/msa"
)

// References looks up the error-free read of an anchor
type References interface {
	Get(i int) (string, error)
}

// BuildExample runs the per-block pipeline: select the center, encode the
// block and crop it once.
func BuildExample(b *msa.Block, refs References, policy *Policy, height, width int) (Example, error) {
	ref, err := refs.Get(b.AnchorRead)
	if err != nil {
		return Example{}, err
	}

	sel, err := policy.Select(b, ref)
	if err != nil {
		return Example{}, err
	}

	tensor, err := msa.Encode(b)
	if err != nil {
		return Example{}, err
	}

	return Example{
		Window:    msa.Crop(tensor, height, width, b.AnchorRow, sel.Column),
		Label:     sel.Label,
		Erroneous: sel.Erroneous,
		Line:      b.FirstLine,
		Column:    sel.Column,
	}, nil
}

// Generate runs the sequential pipeline over paths in order. It stops once
// every bucket holds cfg.MaxPerClass examples, when the input is exhausted,
// or when ctx is cancelled.
func Generate(ctx context.Context, cfg *Config, refs References, paths []string) (*Accumulator, Stats, error) {
	acc := NewAccumulator()
	policy := NewPolicy(cfg.Seed)
	var stats Stats

	for _, path := range paths {
		if acc.Reached(cfg.MaxPerClass) {
			break
		}

		fileStats, err := generateFile(ctx, cfg, refs, policy, acc, path)
		stats.Add(fileStats)
		if err != nil {
			return nil, stats, err
		}
	}

	stats.Accumulated = acc.Counts()
	return acc, stats, nil
}

func generateFile(ctx context.Context, cfg *Config, refs References, policy *Policy, acc *Accumulator, path string) (Stats, error) {
	stats := Stats{Files: 1}

	f, err := msa.OpenFile(path)
	if err != nil {
		return stats, err
	}
	defer f.Close()

	log.WithField("file", path).Debug("reading MSA file")

	for f.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		ex, err := BuildExample(f.Block(), refs, policy, cfg.Height, cfg.Width)
		if err != nil {
			return stats, fmt.Errorf("%s line %d: %w", path, f.Block().FirstLine, err)
		}
		ex.Source = path

		acc.Add(ex)
		stats.Blocks++
		if ex.Erroneous {
			stats.Erroneous++
		}

		if acc.Reached(cfg.MaxPerClass) {
			stats.Stopped = true
			log.WithFields(log.Fields{
				"file":  path,
				"line":  ex.Line,
				"limit": cfg.MaxPerClass,
			}).Info("every bucket reached the per-class limit")
			return stats, nil
		}
	}
	if err := f.Err(); err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}

	return stats, nil
}
