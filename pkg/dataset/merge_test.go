package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMergeBinary(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeFiles(t, first, "C_ncons_0.png", "A_cons_1.png", "A_cons_0.png", IndexFile, "preview/A_cons_0.png")
	writeFiles(t, second, "G_ncons_3.png", "A_cons_0.png")
	out := filepath.Join(t.TempDir(), "merged")

	res, err := Merge(context.Background(), MergeOptions{
		Folders: []string{first, second},
		Output:  out,
		Scheme:  SchemeBinary,
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if res.Folders != 2 || res.Examples != 5 || res.PerBase["A"] != 3 {
		t.Errorf("result = %+v", res)
	}

	r, err := OpenDataset(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	want := []IndexEntry{
		{"A_cons_0.png", 1},
		{"A_cons_1.png", 1},
		{"C_ncons_0.png", 0},
		{"A_cons_2.png", 1},
		{"G_ncons_0.png", 0},
	}
	index := r.Index()
	if len(index) != len(want) {
		t.Fatalf("index = %+v", index)
	}
	for i := range want {
		if index[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, index[i], want[i])
		}
	}

	data, err := os.ReadFile(filepath.Join(out, ExamplesDir, "A_cons_2.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "A_cons_0.png" {
		t.Errorf("A_cons_2.png holds %q, want the second folder's A_cons_0.png", data)
	}
	if r.Metadata().ImageDir != ExamplesDir {
		t.Errorf("ImageDir = %q", r.Metadata().ImageDir)
	}
}

func TestMergeBase(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, "T_2.png", "T_err_0.png", "G_err_7.png")
	out := t.TempDir()

	if _, err := Merge(context.Background(), MergeOptions{Folders: []string{in}, Output: out}); err != nil {
		t.Fatal(err)
	}

	r, err := OpenDataset(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	want := []IndexEntry{{"G_err_0.png", 2}, {"T_0.png", 3}, {"T_err_1.png", 3}}
	for i, e := range r.Index() {
		if e != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestMergeRejectsForeignNames(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, "A_cons_0.png", "A_err_0.png")

	_, err := Merge(context.Background(), MergeOptions{Folders: []string{in}, Output: t.TempDir(), Scheme: SchemeBinary})
	if err == nil {
		t.Error("binary merge accepted an err annotation")
	}

	writeFiles(t, in, "snapshot.png")
	if _, err := Merge(context.Background(), MergeOptions{Folders: []string{in}, Output: t.TempDir()}); err == nil {
		t.Error("merge accepted a file that is not an example")
	}
}

func TestSplitFolders(t *testing.T) {
	folders := []string{"part_4", "part_0", "part_3", "part_1", "part_2"}

	train, val, err := SplitFolders(folders, 0.8, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(train) != 4 || len(val) != 1 {
		t.Fatalf("split %d/%d, want 4/1", len(train), len(val))
	}

	seen := make(map[string]bool)
	for _, f := range append(append([]string{}, train...), val...) {
		seen[f] = true
	}
	if len(seen) != 5 {
		t.Errorf("split lost folders: %v %v", train, val)
	}

	shuffled := []string{"part_2", "part_1", "part_0", "part_4", "part_3"}
	train2, val2, _ := SplitFolders(shuffled, 0.8, 1)
	for i := range train {
		if train[i] != train2[i] {
			t.Fatalf("split depends on input order: %v vs %v", train, train2)
		}
	}
	if val[0] != val2[0] {
		t.Errorf("validation differs: %v vs %v", val, val2)
	}

	if folders[0] != "part_4" {
		t.Error("SplitFolders reordered its input")
	}
	if _, _, err := SplitFolders(folders, 1.5, 1); err == nil {
		t.Error("fraction 1.5 accepted")
	}
}
