package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/scttfrdmn/deepcare-go/pkg/dataset"
)

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"part_2.msa", "part_0.msa", "part_1.msa.gz", "reads.fq"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
		ok       bool
	}{
		{"sorted glob", []string{filepath.Join(dir, "part_*")}, []string{"part_0.msa", "part_1.msa.gz", "part_2.msa"}, true},
		{"plain file", []string{filepath.Join(dir, "reads.fq")}, []string{"reads.fq"}, true},
		{"pattern order kept", []string{filepath.Join(dir, "part_2*"), filepath.Join(dir, "part_0*")}, []string{"part_2.msa", "part_0.msa"}, true},
		{"no match", []string{filepath.Join(dir, "*.bam")}, nil, false},
		{"bad pattern", []string{filepath.Join(dir, "[")}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandInputs(tt.patterns)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v, want ok = %t", err, tt.ok)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if filepath.Base(got[i]) != tt.want[i] {
					t.Errorf("match %d = %s, want %s", i, filepath.Base(got[i]), tt.want[i])
				}
			}
		})
	}
}

func TestLoadGenerateConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("workers", 0)
	viper.Set("height", 21)
	viper.Set("scheme", "Binary")

	cfg, err := loadGenerateConfig()
	if err != nil {
		t.Fatalf("loadGenerateConfig: %v", err)
	}
	if cfg.Workers != dataset.NewConfig().Workers || cfg.Workers < 1 {
		t.Errorf("Workers = %d, want the auto-detected count", cfg.Workers)
	}
	if cfg.Height != 21 || cfg.Width != 51 || cfg.Scheme != dataset.SchemeBinary {
		t.Errorf("config = %+v", cfg)
	}

	viper.Set("workers", 3)
	if cfg, err := loadGenerateConfig(); err != nil || cfg.Workers != 3 {
		t.Errorf("explicit workers: %+v, %v", cfg, err)
	}

	viper.Set("scheme", "ternary")
	if _, err := loadGenerateConfig(); err == nil {
		t.Error("unknown scheme accepted")
	}
}
