package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scttfrdmn/deepcare-go/pkg/msa"
	"github.com/scttfrdmn/deepcare-go/pkg/reference"
)

// corpus builds MSA dumps with one single-row block per example. Each round
// yields one clean and one erroneous block per base.
type corpus struct {
	dump strings.Builder
	refs []string
}

func (c *corpus) block(anchor, ref string) {
	fmt.Fprintf(&c.dump, "1 %d 0 %d\n0 %s\n", len(anchor), len(c.refs), anchor)
	c.refs = append(c.refs, ref)
}

func (c *corpus) round() {
	for _, b := range Bases {
		clean := "GG" + string(b) + "GG"
		c.block(clean, clean)

		other := byte('C')
		if b == 'C' {
			other = 'A'
		}
		anchor := strings.Repeat(string(other), 5)
		c.block(anchor, anchor[:2]+string(b)+anchor[3:])
	}
}

func (c *corpus) write(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(c.dump.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() *Config {
	cfg := NewConfig()
	cfg.Height = 3
	cfg.Width = 5
	cfg.Workers = 1
	cfg.ShowProgress = false
	return cfg
}

func TestGenerate(t *testing.T) {
	var c corpus
	for i := 0; i < 3; i++ {
		c.round()
	}
	path := c.write(t, "part_0.msa")

	acc, stats, err := Generate(context.Background(), testConfig(), reference.NewReads(c.refs, nil), []string{path})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if stats.Files != 1 || stats.Blocks != 24 || stats.Erroneous != 12 || stats.Stopped {
		t.Errorf("stats = %+v", stats)
	}
	for _, b := range Bases {
		if acc.Len(false, b) != 3 || acc.Len(true, b) != 3 {
			t.Errorf("bucket %s: %d clean, %d erroneous", b, acc.Len(false, b), acc.Len(true, b))
		}
	}

	ex := acc.erroneous['G'][0]
	if ex.Column != 2 || ex.Source != path || ex.Line != 11 {
		t.Errorf("first erroneous G example = %+v", ex)
	}
	if ex.Window.Height != 3 || ex.Window.Width != 5 {
		t.Fatalf("window shape %dx%d", ex.Window.Height, ex.Window.Width)
	}
	if ex.Window.At(1, 2) != msa.BaseC || ex.Window.At(0, 2) != msa.Absent {
		t.Errorf("window center column = %d over %d", ex.Window.At(1, 2), ex.Window.At(0, 2))
	}
}

func TestGenerateStopsAtLimit(t *testing.T) {
	var c corpus
	for i := 0; i < 3; i++ {
		c.round()
	}
	first := c.write(t, "part_0.msa")
	second := c.write(t, "part_1.msa")

	cfg := testConfig()
	cfg.MaxPerClass = 2

	acc, stats, err := Generate(context.Background(), cfg, reference.NewReads(c.refs, nil), []string{first, second})
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Stopped || stats.Blocks != 16 || stats.Files != 1 {
		t.Errorf("stats = %+v, want stop after 16 blocks of the first file", stats)
	}
	if bal := acc.Finalize(cfg.MaxPerClass); bal.PerBucket != 2 {
		t.Errorf("PerBucket = %d, want 2", bal.PerBucket)
	}
}

func TestGenerateErrors(t *testing.T) {
	var c corpus
	c.round()
	path := c.write(t, "part_0.msa")

	short := reference.NewReads(c.refs[:3], nil)
	_, _, err := Generate(context.Background(), testConfig(), short, []string{path})
	if !errors.Is(err, reference.ErrIndexOutOfRange) {
		t.Errorf("want ErrIndexOutOfRange, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.msa")
	if err := os.WriteFile(bad, []byte("1 5 0 0\n0 ACXTA\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err = Generate(context.Background(), testConfig(), reference.NewReads([]string{"ACGTA"}, nil), []string{bad})
	if !errors.Is(err, msa.ErrUnknownSymbol) {
		t.Errorf("want ErrUnknownSymbol, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = Generate(ctx, testConfig(), reference.NewReads(c.refs, nil), []string{path})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestGenerateParallel(t *testing.T) {
	var c corpus
	for i := 0; i < 5; i++ {
		c.round()
	}
	paths := []string{c.write(t, "part_0.msa"), c.write(t, "part_1.msa")}
	refs := reference.NewReads(c.refs, nil)

	cfg := testConfig()
	cfg.Workers = 3

	acc, stats, err := GenerateParallel(context.Background(), cfg, refs, paths)
	if err != nil {
		t.Fatalf("GenerateParallel: %v", err)
	}
	if stats.Files != 2 || stats.Blocks != 80 || stats.Erroneous != 40 {
		t.Errorf("stats = %+v", stats)
	}
	for _, b := range Bases {
		if acc.Len(false, b) != 10 || acc.Len(true, b) != 10 {
			t.Errorf("bucket %s: %d clean, %d erroneous", b, acc.Len(false, b), acc.Len(true, b))
		}
	}

	again, _, err := GenerateParallel(context.Background(), cfg, refs, paths)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range Bases {
		for i, ex := range acc.erroneous[b] {
			other := again.erroneous[b][i]
			if ex.Source != other.Source || ex.Line != other.Line {
				t.Fatalf("bucket %s differs at %d: %s:%d vs %s:%d", b, i, ex.Source, ex.Line, other.Source, other.Line)
			}
		}
	}
}

func TestGenerateParallelSeeded(t *testing.T) {
	var dump strings.Builder
	var refs []string
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&dump, "1 12 0 %d\n0 AAAAAAAAAAAA\n", i)
		refs = append(refs, "CAGACATAGACT")
	}
	path := filepath.Join(t.TempDir(), "part_0.msa")
	if err := os.WriteFile(path, []byte(dump.String()), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Workers = 4

	columns := func() []int {
		acc, _, err := GenerateParallel(context.Background(), cfg, reference.NewReads(refs, nil), []string{path})
		if err != nil {
			t.Fatal(err)
		}
		var cols []int
		for _, b := range Bases {
			for _, ex := range acc.erroneous[b] {
				cols = append(cols, ex.Column)
			}
		}
		return cols
	}

	first, second := columns(), columns()
	if len(first) != 30 || len(second) != 30 {
		t.Fatalf("got %d and %d erroneous examples, want 30", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("column %d differs between runs: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestGenerateParallelCancelled(t *testing.T) {
	var c corpus
	for i := 0; i < 5; i++ {
		c.round()
	}
	path := c.write(t, "part_0.msa")

	cfg := testConfig()
	cfg.Workers = 4

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acc, _, err := GenerateParallel(ctx, cfg, reference.NewReads(c.refs, nil), []string{path})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
	if acc != nil {
		t.Errorf("cancelled run returned an accumulator with %d examples", acc.Total())
	}
}

func TestGenerateParallelError(t *testing.T) {
	var c corpus
	for i := 0; i < 4; i++ {
		c.round()
	}
	path := c.write(t, "part_0.msa")

	cfg := testConfig()
	cfg.Workers = 4

	_, _, err := GenerateParallel(context.Background(), cfg, reference.NewReads(c.refs[:10], nil), []string{path})
	if !errors.Is(err, reference.ErrIndexOutOfRange) {
		t.Errorf("want ErrIndexOutOfRange, got %v", err)
	}
}

func TestDeriveSeed(t *testing.T) {
	if DeriveSeed(1, 0) != DeriveSeed(1, 0) {
		t.Error("DeriveSeed is not deterministic")
	}
	seen := make(map[int64]bool)
	for w := 0; w < 16; w++ {
		s := DeriveSeed(1, w)
		if seen[s] {
			t.Fatalf("worker %d repeats a seed", w)
		}
		seen[s] = true
	}
	if DeriveSeed(1, 3) == DeriveSeed(2, 3) {
		t.Error("different run seeds derive the same worker seed")
	}
}
