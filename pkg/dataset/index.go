package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// IndexFile is the name of the index table in a dataset
const IndexFile = "train_labels.csv"

var indexHeader = []string{"img_name", "label"}

// IndexEntry is one row of the index table
type IndexEntry struct {
	Name  string
	Label int
}

// WriteIndex writes the index table with its header row
func WriteIndex(w io.Writer, entries []IndexEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(indexHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Name, strconv.Itoa(e.Label)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeIndex returns the index table as bytes
func EncodeIndex(entries []IndexEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteIndex(&buf, entries); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadIndex parses an index table
func ReadIndex(r io.Reader) ([]IndexEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read index header: %w", err)
	}
	if header[0] != indexHeader[0] || header[1] != indexHeader[1] {
		return nil, fmt.Errorf("unexpected index header %v", header)
	}

	var entries []IndexEntry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read index: %w", err)
		}
		label, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("index row %q: label is not an integer", rec[0])
		}
		entries = append(entries, IndexEntry{Name: rec[0], Label: label})
	}
	return entries, nil
}
