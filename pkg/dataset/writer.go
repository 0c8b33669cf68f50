package dataset

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/scttfrdmn/deepcare-go/pkg/storage"
)

// Writer writes a dataset: one PNG per example, the index table and the
// metadata file.
type Writer struct {
	storage  storage.Storage
	config   Config
	metadata Metadata
	index    []IndexEntry
}

// NewWriter creates a dataset writer for a local directory or s3:// URI
func NewWriter(ctx context.Context, location string, cfg Config) (*Writer, error) {
	scheme, err := ParseLabelScheme(string(cfg.Scheme))
	if err != nil {
		return nil, err
	}
	cfg.Scheme = scheme

	store, err := storage.NewStorage(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	if err := store.MkdirAll(""); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	if cfg.Preview {
		if err := store.MkdirAll(PreviewDir); err != nil {
			return nil, fmt.Errorf("failed to create preview directory: %w", err)
		}
	}

	return &Writer{
		storage: store,
		config:  cfg,
		metadata: Metadata{
			Format:    "deepcare-dataset",
			Version:   "1.0",
			Created:   time.Now(),
			CreatedBy: "deepcare-go",
			Config:    cfg,
		},
	}, nil
}

// SetSource sets the source information
func (w *Writer) SetSource(source Source) {
	w.metadata.Source = source
}

// SetStats records the generation statistics
func (w *Writer) SetStats(stats Stats) {
	w.metadata.Stats = stats
}

// Add writes one example; n is its ordinal within its bucket
func (w *Writer) Add(ex Example, n int) error {
	name := w.config.Scheme.FileName(ex.Label, ex.Erroneous, n)

	data, err := EncodeWindow(ex.Window)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := w.storage.WriteFile(name, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if w.config.Preview {
		preview, err := EncodePreview(ex.Window)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := w.storage.WriteFile(path.Join(PreviewDir, name), preview); err != nil {
			return fmt.Errorf("failed to write preview %s: %w", name, err)
		}
	}

	label := w.config.Scheme.Label(ex.Label, ex.Erroneous)

	w.index = append(w.index, IndexEntry{Name: name, Label: label})
	w.metadata.Images = append(w.metadata.Images, Image{
		Name:      name,
		Label:     label,
		Base:      ex.Label.String(),
		Erroneous: ex.Erroneous,
		SizeBytes: int64(len(data)),
		Checksum:  checksum(data),
		Source:    ex.Source,
		Line:      ex.Line,
		Column:    ex.Column,
	})

	return nil
}

// WriteBalanced writes every example of bal and records the retained counts
func (w *Writer) WriteBalanced(bal *Balanced) error {
	var bar *pb.ProgressBar
	if w.config.ShowProgress && bal.Len() > 0 {
		bar = pb.New(bal.Len())
		bar.Output = os.Stderr
		bar.Start()
		defer bar.Finish()
	}

	err := bal.Each(func(ex Example, n int) error {
		if err := w.Add(ex, n); err != nil {
			return err
		}
		if bar != nil {
			bar.Increment()
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.metadata.PerBucket = bal.PerBucket
	retained := newBucketCounts()
	for _, b := range Bases {
		retained.Clean[b.String()] = len(bal.Clean[b])
		retained.Erroneous[b.String()] = len(bal.Erroneous[b])
	}
	w.metadata.Stats.Retained = retained
	return nil
}

// Finalize writes the index table and the metadata file
func (w *Writer) Finalize() error {
	index, err := EncodeIndex(w.index)
	if err != nil {
		return err
	}
	if err := w.storage.WriteFile(IndexFile, index); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	meta, err := json.MarshalIndent(w.metadata, "", "  ")
	if err != nil {
		return err
	}
	if err := w.storage.WriteFile(MetadataFile, meta); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	log.WithFields(log.Fields{
		"path":       w.storage.BasePath(),
		"examples":   len(w.index),
		"per_bucket": w.metadata.PerBucket,
	}).Info("dataset written")

	if s3, ok := w.storage.(*storage.S3Storage); ok {
		log.Infof("uploaded %.1f MB to S3", float64(s3.UploadedBytes())/float64(MB))
	}

	return nil
}

// checksum returns the hex blake2b-256 digest of data
func checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Index returns the index entries written so far
func (w *Writer) Index() []IndexEntry {
	return w.index
}
