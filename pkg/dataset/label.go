package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scttfrdmn/deepcare-go/pkg/msa"
)

// Base is a nucleotide label
type Base byte

// Bases lists the label bases in label-code order
var Bases = [4]Base{'A', 'C', 'G', 'T'}

// ParseBase validates a label byte
func ParseBase(b byte) (Base, error) {
	switch b {
	case 'A', 'C', 'G', 'T':
		return Base(b), nil
	}
	return 0, fmt.Errorf("%w: label base %q", msa.ErrUnknownSymbol, b)
}

// Code returns the index-table label of the base: A=0, C=1, G=2, T=3
func (b Base) Code() int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	}
	return -1
}

func (b Base) String() string {
	return string(b)
}

// LabelScheme selects how examples are labelled in the index
type LabelScheme string

const (
	// SchemeBase labels an example with its true base (4 classes)
	SchemeBase LabelScheme = "base"

	// SchemeBinary labels an example consensus (1, anchor correct) or
	// non-consensus (0, anchor erroneous)
	SchemeBinary LabelScheme = "binary"
)

// Binary annotations used in file names
const (
	AnnotationErroneous = "err"
	AnnotationCons      = "cons"
	AnnotationNonCons   = "ncons"
)

// ParseLabelScheme validates a scheme name
func ParseLabelScheme(s string) (LabelScheme, error) {
	switch LabelScheme(strings.ToLower(s)) {
	case SchemeBase, "":
		return SchemeBase, nil
	case SchemeBinary:
		return SchemeBinary, nil
	}
	return "", fmt.Errorf("unknown label scheme %q (want base or binary)", s)
}

// Annotation returns the file-name annotation of an example, empty for clean
// examples under the base scheme.
func (s LabelScheme) Annotation(erroneous bool) string {
	if s == SchemeBinary {
		if erroneous {
			return AnnotationNonCons
		}
		return AnnotationCons
	}
	if erroneous {
		return AnnotationErroneous
	}
	return ""
}

// Label returns the index label of an example
func (s LabelScheme) Label(base Base, erroneous bool) int {
	if s == SchemeBinary {
		if erroneous {
			return 0
		}
		return 1
	}
	return base.Code()
}

// FileName returns "<base>[_<annotation>]_<n>.png"
func (s LabelScheme) FileName(base Base, erroneous bool, n int) string {
	return ExampleName(base, s.Annotation(erroneous), n)
}

// ExampleName builds an example file name from its parts
func ExampleName(base Base, annotation string, n int) string {
	if annotation == "" {
		return fmt.Sprintf("%c_%d.png", base, n)
	}
	return fmt.Sprintf("%c_%s_%d.png", base, annotation, n)
}

// ParseExampleName splits "<base>[_<annotation>]_<n>.png" into base and
// annotation. The annotation may itself contain underscores.
func ParseExampleName(name string) (Base, string, error) {
	stem := strings.TrimSuffix(name, ".png")
	if stem == name {
		return 0, "", fmt.Errorf("example %q: not a .png file", name)
	}

	parts := strings.Split(stem, "_")
	if len(parts) < 2 || len(parts[0]) != 1 {
		return 0, "", fmt.Errorf("example %q: want <base>[_<annotation>]_<n>.png", name)
	}
	if _, err := strconv.Atoi(parts[len(parts)-1]); err != nil {
		return 0, "", fmt.Errorf("example %q: counter is not a number", name)
	}

	base, err := ParseBase(parts[0][0])
	if err != nil {
		return 0, "", fmt.Errorf("example %q: %w", name, err)
	}

	return base, strings.Join(parts[1:len(parts)-1], "_"), nil
}

// BinaryLabel maps a binary annotation to its index label. Only the first
// underscore-separated part of the annotation is significant.
func BinaryLabel(annotation string) (int, error) {
	head, _, _ := strings.Cut(annotation, "_")
	switch head {
	case AnnotationCons:
		return 1, nil
	case AnnotationNonCons:
		return 0, nil
	}
	return 0, fmt.Errorf("annotation %q is not %s or %s", annotation, AnnotationCons, AnnotationNonCons)
}
