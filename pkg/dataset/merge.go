package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/scttfrdmn/deepcare-go/pkg/storage"
)

// ExamplesDir holds the images of a merged dataset
const ExamplesDir = "examples"

// MergeOptions configures Merge
type MergeOptions struct {
	Folders      []string // Input dataset folders or s3:// URIs
	Output       string   // Output folder or s3:// URI
	Scheme       LabelScheme
	ShowProgress bool
}

// MergeResult summarizes a merge
type MergeResult struct {
	Folders  int
	Examples int
	PerBase  map[string]int
}

// mergeInput is one input folder with its sorted image names
type mergeInput struct {
	folder string
	store  storage.Storage
	images []string
}

// Merge copies the top-level *.png examples of every input folder into
// <Output>/examples, renumbered with one counter per base, and writes the
// index table and metadata of the merged dataset.
func Merge(ctx context.Context, opts MergeOptions) (*MergeResult, error) {
	scheme, err := ParseLabelScheme(string(opts.Scheme))
	if err != nil {
		return nil, err
	}
	if len(opts.Folders) == 0 {
		return nil, fmt.Errorf("no input folders")
	}

	out, err := storage.NewStorage(ctx, opts.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := out.MkdirAll(ExamplesDir); err != nil {
		return nil, fmt.Errorf("failed to create examples directory: %w", err)
	}

	inputs := make([]mergeInput, 0, len(opts.Folders))
	total := 0
	for _, folder := range opts.Folders {
		in, err := listExamples(ctx, folder)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
		total += len(in.images)
	}

	var bar *pb.ProgressBar
	if opts.ShowProgress && total > 0 {
		bar = pb.New(total)
		bar.Output = os.Stderr
		bar.Start()
		defer bar.Finish()
	}

	counter := make(map[Base]int, len(Bases))
	var index []IndexEntry
	meta := Metadata{
		Format:    "deepcare-dataset",
		Version:   "1.0",
		Created:   time.Now(),
		CreatedBy: "deepcare-go merge",
		Config:    Config{Scheme: scheme},
		ImageDir:  ExamplesDir,
	}

	for _, in := range inputs {
		start := time.Now()
		log.WithFields(log.Fields{
			"folder": in.folder,
			"images": len(in.images),
		}).Info("merging folder")

		for _, name := range in.images {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			base, annotation, err := ParseExampleName(name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", in.folder, err)
			}

			label := base.Code()
			if scheme == SchemeBinary {
				label, err = BinaryLabel(annotation)
				if err != nil {
					return nil, fmt.Errorf("%s: %s: %w", in.folder, name, err)
				}
			}

			data, err := in.store.ReadFile(name)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", storage.Join(in.folder, name), err)
			}

			newName := ExampleName(base, annotation, counter[base])
			if err := out.WriteFile(path.Join(ExamplesDir, newName), data); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", newName, err)
			}
			counter[base]++

			index = append(index, IndexEntry{Name: newName, Label: label})
			meta.Images = append(meta.Images, Image{
				Name:      newName,
				Label:     label,
				Base:      base.String(),
				Erroneous: isErroneousAnnotation(annotation),
				SizeBytes: int64(len(data)),
				Checksum:  checksum(data),
				Source:    storage.Join(in.folder, name),
			})

			if bar != nil {
				bar.Increment()
			}
		}

		meta.Source.MSAFiles = append(meta.Source.MSAFiles, in.folder)
		log.WithFields(log.Fields{
			"folder":   in.folder,
			"duration": time.Since(start).Round(time.Millisecond),
		}).Debug("folder merged")
	}

	data, err := EncodeIndex(index)
	if err != nil {
		return nil, err
	}
	if err := out.WriteFile(IndexFile, data); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := out.WriteFile(MetadataFile, metaData); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	result := &MergeResult{
		Folders:  len(inputs),
		Examples: len(index),
		PerBase:  make(map[string]int, len(Bases)),
	}
	for _, b := range Bases {
		result.PerBase[b.String()] = counter[b]
	}

	log.WithFields(log.Fields{
		"path":     out.BasePath(),
		"folders":  result.Folders,
		"examples": result.Examples,
	}).Info("merged dataset written")

	return result, nil
}

// listExamples returns the top-level PNG files of folder in name order
func listExamples(ctx context.Context, folder string) (mergeInput, error) {
	store, err := storage.NewStorage(ctx, folder)
	if err != nil {
		return mergeInput{}, fmt.Errorf("failed to open %s: %w", folder, err)
	}

	files, err := store.List("")
	if err != nil {
		return mergeInput{}, fmt.Errorf("failed to list %s: %w", folder, err)
	}

	var images []string
	for _, f := range files {
		if strings.Contains(f, "/") || !strings.HasSuffix(f, ".png") {
			continue
		}
		images = append(images, f)
	}
	sort.Strings(images)

	return mergeInput{folder: folder, store: store, images: images}, nil
}

func isErroneousAnnotation(annotation string) bool {
	head, _, _ := strings.Cut(annotation, "_")
	return head == AnnotationErroneous || head == AnnotationNonCons
}

// SplitFolders sorts folders, shuffles them with seed and returns the first
// ceil(n*fraction) as the training set and the rest as the validation set.
func SplitFolders(folders []string, fraction float64, seed int64) (training, validation []string, err error) {
	if fraction < 0 || fraction > 1 {
		return nil, nil, fmt.Errorf("split fraction must be in [0, 1], got %g", fraction)
	}

	sorted := append([]string(nil), folders...)
	sort.Strings(sorted)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(sorted), func(i, j int) {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	})

	n := int(math.Ceil(float64(len(sorted)) * fraction))
	return sorted[:n:n], sorted[n:], nil
}
