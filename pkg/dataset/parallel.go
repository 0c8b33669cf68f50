package dataset

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/scttfrdmn/deepcare-go/pkg/msa"
)

// maxWorkers bounds the worker pool
const maxWorkers = 64

// DeriveSeed returns the seed of one worker: the first 8 bytes of
// blake2b-256(seed || worker), so shards never share a random stream.
func DeriveSeed(seed int64, worker int) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(worker))
	sum := blake2b.Sum256(buf[:])
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}

// blockJob is one unparsed block routed to a worker
type blockJob struct {
	raw    msa.RawBlock
	source string
}

// shard is the private state of one worker
type shard struct {
	id     int
	jobs   chan blockJob
	policy *Policy
	acc    *Accumulator
	stats  Stats
}

// GenerateParallel shards blocks over cfg.Workers workers. Block i (counted
// across all files) goes to worker i mod W; each worker parses, selects,
// encodes and crops its blocks into its own accumulator with its own seed.
// Worker accumulators are merged in worker order once all workers finish, so
// the result depends only on the input, the seed and the worker count.
// Workers do not stop early; cfg.MaxPerClass caps the buckets at Finalize.
// Cancelling ctx aborts the run with ctx.Err().
func GenerateParallel(ctx context.Context, cfg *Config, refs References, paths []string) (*Accumulator, Stats, error) {
	workers := cfg.Workers
	if workers <= 1 {
		return Generate(ctx, cfg, refs, paths)
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	shards := make([]*shard, workers)
	for i := range shards {
		shards[i] = &shard{
			id:     i,
			jobs:   make(chan blockJob, 64),
			policy: NewPolicy(DeriveSeed(cfg.Seed, i)),
			acc:    NewAccumulator(),
		}
	}

	errorChan := make(chan error, 1)
	report := func(err error) {
		select {
		case errorChan <- err:
		default:
		}
		cancel()
	}

	var wg sync.WaitGroup
	for _, s := range shards {
		wg.Add(1)
		go func(s *shard) {
			defer wg.Done()
			if err := s.run(workCtx, cfg, refs); err != nil {
				report(err)
			}
		}(s)
	}

	stats, dispatchErr := dispatch(workCtx, paths, shards)

	for _, s := range shards {
		close(s.jobs)
	}
	wg.Wait()

	// Worker errors come first: they cancel workCtx, which also stops dispatch
	select {
	case err := <-errorChan:
		return nil, stats, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	if dispatchErr != nil {
		return nil, stats, dispatchErr
	}

	acc := NewAccumulator()
	for _, s := range shards {
		acc.Merge(s.acc)
		stats.Add(s.stats)
		log.WithFields(log.Fields{
			"worker":   s.id,
			"blocks":   s.stats.Blocks,
			"examples": s.acc.Total(),
		}).Debug("worker finished")
	}

	stats.Accumulated = acc.Counts()
	return acc, stats, nil
}

// dispatch reads every file and hands raw blocks to shards round-robin
func dispatch(ctx context.Context, paths []string, shards []*shard) (Stats, error) {
	var stats Stats
	next := 0

	for _, path := range paths {
		f, err := msa.OpenFile(path)
		if err != nil {
			return stats, err
		}
		stats.Files++

		for f.ScanRaw() {
			job := blockJob{raw: f.Raw(), source: path}
			select {
			case shards[next].jobs <- job:
			case <-ctx.Done():
				f.Close()
				return stats, ctx.Err()
			}
			next = (next + 1) % len(shards)
		}
		err = f.Err()
		f.Close()
		if err != nil {
			return stats, fmt.Errorf("%s: %w", path, err)
		}
	}

	return stats, nil
}

// run consumes the shard's jobs. After an error it keeps draining so the
// dispatcher never blocks on a dead worker.
func (s *shard) run(ctx context.Context, cfg *Config, refs References) error {
	var firstErr error
	for job := range s.jobs {
		if firstErr != nil || ctx.Err() != nil {
			continue
		}

		b, err := job.raw.Parse()
		if err != nil {
			firstErr = fmt.Errorf("%s: %w", job.source, err)
			continue
		}

		ex, err := BuildExample(b, refs, s.policy, cfg.Height, cfg.Width)
		if err != nil {
			firstErr = fmt.Errorf("worker %d: %s line %d: %w", s.id, job.source, b.FirstLine, err)
			continue
		}
		ex.Source = job.source

		s.acc.Add(ex)
		s.stats.Blocks++
		if ex.Erroneous {
			s.stats.Erroneous++
		}
	}
	return firstErr
}
