package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/scttfrdmn/deepcare-go/pkg/msa"
)

func sampleBalanced() *Balanced {
	acc := NewAccumulator()
	for i, b := range Bases {
		for _, erroneous := range []bool{false, true} {
			for n := 0; n < 2; n++ {
				w := msa.NewWindow(3, 5)
				w.Set(1, 2, msa.Code(i+1))
				w.Set(1, n, msa.BaseA)
				acc.Add(Example{Window: w, Label: b, Erroneous: erroneous, Source: "part_0.msa", Line: n + 1, Column: 2})
			}
		}
	}
	return acc.Finalize(0)
}

func TestWriterRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "w5_h3")
	cfg := *testConfig()
	cfg.Preview = true

	w, err := NewWriter(context.Background(), dir, cfg)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.SetSource(Source{MSAFiles: []string{"part_0.msa"}, Reference: "reads.fq"})
	w.SetStats(Stats{Files: 1, Blocks: 16})

	bal := sampleBalanced()
	if err := w.WriteBalanced(bal); err != nil {
		t.Fatalf("WriteBalanced: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	for _, name := range []string{"A_0.png", "T_err_1.png", "preview/G_1.png", IndexFile, MetadataFile} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	r, err := OpenDataset(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenDataset: %v", err)
	}

	index := r.Index()
	if len(index) != 16 {
		t.Fatalf("index has %d rows, want 16", len(index))
	}
	if index[0].Name != "A_0.png" || index[15].Name != "T_err_1.png" || index[15].Label != 3 {
		t.Errorf("index = %+v", index)
	}
	if counts := r.LabelCounts(); counts[0] != 4 || counts[3] != 4 {
		t.Errorf("LabelCounts = %v", counts)
	}

	meta := r.Metadata()
	if meta.PerBucket != 2 || len(meta.Images) != 16 || meta.Stats.Blocks != 16 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Stats.Retained.Erroneous["C"] != 2 || meta.Source.Reference != "reads.fq" {
		t.Errorf("metadata stats = %+v, source = %+v", meta.Stats, meta.Source)
	}
	if len(meta.Images[0].Checksum) != 64 {
		t.Errorf("checksum %q is not blake2b-256 hex", meta.Images[0].Checksum)
	}

	win, err := r.Window("C_err_1.png")
	if err != nil {
		t.Fatal(err)
	}
	if win.At(1, 2) != msa.BaseC || win.At(1, 1) != msa.BaseA || win.At(0, 0) != msa.Absent {
		t.Errorf("decoded window row 1 = %d %d %d", win.At(1, 0), win.At(1, 1), win.At(1, 2))
	}
}

func TestWriterBinaryScheme(t *testing.T) {
	dir := t.TempDir()
	cfg := *testConfig()
	cfg.Scheme = SchemeBinary

	w, err := NewWriter(context.Background(), dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBalanced(sampleBalanced()); err != nil {
		t.Fatal(err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}

	index := w.Index()
	if index[0].Name != "A_cons_0.png" || index[0].Label != 1 {
		t.Errorf("first entry = %+v", index[0])
	}
	if last := index[len(index)-1]; last.Name != "T_ncons_1.png" || last.Label != 0 {
		t.Errorf("last entry = %+v", last)
	}

	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		t.Fatal(err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatal(err)
	}
	if meta.Config.Scheme != SchemeBinary || meta.Config.Height != 3 {
		t.Errorf("metadata config = %+v", meta.Config)
	}
}

func TestOpenDatasetWithoutMetadata(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte("img_name,label\nA_0.png,0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := OpenDataset(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Index()) != 1 || r.Metadata().Format != "" {
		t.Errorf("index = %+v, metadata = %+v", r.Index(), r.Metadata())
	}

	if _, err := OpenDataset(context.Background(), t.TempDir()); err == nil {
		t.Error("OpenDataset succeeded without an index")
	}
}
