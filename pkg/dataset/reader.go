package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/scttfrdmn/deepcare-go/pkg/msa"
	"github.com/scttfrdmn/deepcare-go/pkg/storage"
)

// Reader reads a generated dataset
type Reader struct {
	storage  storage.Storage
	metadata Metadata
	index    []IndexEntry
}

// OpenDataset opens a dataset directory or s3:// URI and loads its index.
// A missing metadata file leaves Metadata zero.
func OpenDataset(ctx context.Context, location string) (*Reader, error) {
	store, err := storage.NewStorage(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	r := &Reader{storage: store}

	ok, err := store.Exists(MetadataFile)
	if err != nil {
		return nil, err
	}
	if ok {
		data, err := store.ReadFile(MetadataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load metadata: %w", err)
		}
		if err := json.Unmarshal(data, &r.metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
	}

	data, err := store.ReadFile(IndexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	r.index, err = ReadIndex(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Metadata returns the dataset metadata
func (r *Reader) Metadata() Metadata {
	return r.metadata
}

// Index returns the index table
func (r *Reader) Index() []IndexEntry {
	return r.index
}

// Window decodes the example image called name, as listed in the index
func (r *Reader) Window(name string) (*msa.Window, error) {
	data, err := r.storage.ReadFile(path.Join(r.metadata.ImageDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	w, err := DecodeWindow(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return w, nil
}

// LabelCounts returns the number of index rows per label
func (r *Reader) LabelCounts() map[int]int {
	counts := make(map[int]int)
	for _, e := range r.index {
		counts[e.Label]++
	}
	return counts
}
