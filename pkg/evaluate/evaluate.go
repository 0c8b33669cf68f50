// Package evaluate scores model predictions against a dataset index
package evaluate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/scttfrdmn/deepcare-go/pkg/dataset"
)

// ErrUnknownImage is returned for predictions naming an image missing from
// the index
var ErrUnknownImage = errors.New("image not in index")

// Prediction is one predicted label
type Prediction struct {
	Name  string
	Label int
}

// ClassReport holds the accuracy of one true label
type ClassReport struct {
	Label    int     `json:"label"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Report summarizes an evaluation
type Report struct {
	Total    int           `json:"total"`
	Correct  int           `json:"correct"`
	Accuracy float64       `json:"accuracy"`
	Missing  int           `json:"missing"` // Index rows without a prediction
	Classes  []ClassReport `json:"classes"`
}

// ReadPredictions parses a predictions table: a header row followed by
// "<img_name>,<predicted label>" rows.
func ReadPredictions(r io.Reader) ([]Prediction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("failed to read predictions header: %w", err)
	}

	var preds []Prediction
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read predictions: %w", err)
		}
		label, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("prediction for %q: label is not an integer", rec[0])
		}
		preds = append(preds, Prediction{Name: rec[0], Label: label})
	}
	return preds, nil
}

// Evaluate joins predictions with the index on image name. Only predicted
// images are scored; index rows without a prediction are counted in Missing.
func Evaluate(index []dataset.IndexEntry, predictions []Prediction) (*Report, error) {
	truth := make(map[string]int, len(index))
	for _, e := range index {
		truth[e.Name] = e.Label
	}

	classes := make(map[int]*ClassReport)
	report := &Report{}
	seen := make(map[string]bool, len(predictions))

	for _, p := range predictions {
		label, ok := truth[p.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownImage, p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate prediction for %s", p.Name)
		}
		seen[p.Name] = true

		c, ok := classes[label]
		if !ok {
			c = &ClassReport{Label: label}
			classes[label] = c
		}
		c.Total++
		report.Total++
		if p.Label == label {
			c.Correct++
			report.Correct++
		}
	}

	report.Missing = len(truth) - len(seen)
	report.Accuracy = ratio(report.Correct, report.Total)

	for _, c := range classes {
		c.Accuracy = ratio(c.Correct, c.Total)
		report.Classes = append(report.Classes, *c)
	}
	sort.Slice(report.Classes, func(i, j int) bool {
		return report.Classes[i].Label < report.Classes[j].Label
	})

	return report, nil
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
