package dataset

import "time"

// Dataset file names
const (
	MetadataFile = "_metadata.json"
	PreviewDir   = "preview"
)

// Metadata describes a generated dataset
type Metadata struct {
	Format    string    `json:"format"`
	Version   string    `json:"version"`
	Created   time.Time `json:"created"`
	CreatedBy string    `json:"created_by"`
	Source    Source    `json:"source"`
	Config    Config    `json:"config"`
	Stats     Stats     `json:"statistics"`
	PerBucket int       `json:"per_bucket"`
	ImageDir  string    `json:"image_dir,omitempty"` // Relative to the dataset root
	Images    []Image   `json:"images"`
}

// Source describes the inputs of a dataset
type Source struct {
	MSAFiles  []string `json:"msa_files"`
	Reference string   `json:"reference"`
}

// Stats summarizes a generation pass
type Stats struct {
	Files       int          `json:"files"`
	Blocks      int          `json:"blocks"`
	Erroneous   int          `json:"erroneous_blocks"`
	Stopped     bool         `json:"stopped_at_limit"` // Limit reached before input ran out
	Accumulated BucketCounts `json:"accumulated"`
	Retained    BucketCounts `json:"retained"`
}

// Add folds other into s
func (s *Stats) Add(other Stats) {
	s.Files += other.Files
	s.Blocks += other.Blocks
	s.Erroneous += other.Erroneous
	s.Stopped = s.Stopped || other.Stopped
}

// Image describes one example file
type Image struct {
	Name      string `json:"name"`
	Label     int    `json:"label"`
	Base      string `json:"base"`
	Erroneous bool   `json:"erroneous"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"` // blake2b-256 of the PNG
	Source    string `json:"source,omitempty"`
	Line      int    `json:"line,omitempty"`
	Column    int    `json:"column"`
}
