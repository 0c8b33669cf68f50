// Package reference loads the ordered collection of error-free reads that
// anchor rows are compared against.
package reference

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"

	"github.com/scttfrdmn/deepcare-go/pkg/storage"
)

// ErrIndexOutOfRange is returned by Get for indices outside the collection
var ErrIndexOutOfRange = errors.New("reference read index out of range")

// Format of a reference read file
type Format string

const (
	FormatFASTQ Format = "fastq"
	FormatFASTA Format = "fasta"
	FormatSAM   Format = "sam"
	FormatBAM   Format = "bam"
)

// DetectFormat infers the format from the file name, ignoring a trailing
// compression suffix.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(storage.TrimCompression(path))) {
	case ".fq", ".fastq":
		return FormatFASTQ, nil
	case ".fa", ".fasta", ".fna":
		return FormatFASTA, nil
	case ".sam":
		return FormatSAM, nil
	case ".bam":
		return FormatBAM, nil
	}
	return "", fmt.Errorf("cannot infer reference format of %s", path)
}

// Reads is an immutable, ordered collection of reference sequences
type Reads struct {
	names []string
	seqs  []string
}

// NewReads wraps in-memory sequences; names may be nil
func NewReads(seqs []string, names []string) *Reads {
	if names == nil {
		names = make([]string, len(seqs))
	}
	return &Reads{names: names, seqs: seqs}
}

// Len returns the number of reads
func (r *Reads) Len() int {
	return len(r.seqs)
}

// Get returns the sequence of read i
func (r *Reads) Get(i int) (string, error) {
	if i < 0 || i >= len(r.seqs) {
		return "", fmt.Errorf("%w: %d (have %d reads)", ErrIndexOutOfRange, i, len(r.seqs))
	}
	return r.seqs[i], nil
}

// Name returns the identifier of read i, empty if unknown
func (r *Reads) Name(i int) string {
	if i < 0 || i >= len(r.names) {
		return ""
	}
	return r.names[i]
}

func (r *Reads) add(name string, s []byte) {
	r.names = append(r.names, name)
	r.seqs = append(r.seqs, string(s))
}

// Load reads every sequence in path, in file order
func Load(path string) (*Reads, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	rc, err := storage.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference reads: %w", err)
	}
	defer rc.Close()

	reads, err := Read(rc, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"path":   path,
		"format": format,
		"reads":  reads.Len(),
	}).Info("loaded reference reads")

	return reads, nil
}

// Read parses all sequences from r
func Read(r io.Reader, format Format) (*Reads, error) {
	switch format {
	case FormatFASTQ:
		return readFASTQ(r)
	case FormatFASTA:
		return readFASTA(r)
	case FormatSAM:
		sr, err := sam.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create SAM reader: %w", err)
		}
		return readRecords(sr)
	case FormatBAM:
		br, err := bam.NewReader(r, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to create BAM reader: %w", err)
		}
		defer br.Close()
		return readRecords(br)
	}
	return nil, fmt.Errorf("unsupported reference format %q", format)
}

func readFASTQ(r io.Reader) (*Reads, error) {
	template := linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger)
	reader := fastq.NewReader(r, template)

	reads := &Reads{}
	for {
		s, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read FASTQ record %d: %w", reads.Len()+1, err)
		}
		q := s.(*linear.QSeq)
		b := make([]byte, len(q.Seq))
		for i, ql := range q.Seq {
			b[i] = byte(ql.L)
		}
		reads.add(q.Name(), b)
	}
	return reads, nil
}

func readFASTA(r io.Reader) (*Reads, error) {
	template := &linear.Seq{Annotation: seq.Annotation{Alpha: alphabet.DNA}}
	reader := fasta.NewReader(r, template)

	reads := &Reads{}
	for {
		s, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read FASTA record %d: %w", reads.Len()+1, err)
		}
		ls := s.(*linear.Seq)
		b := make([]byte, len(ls.Seq))
		for i, l := range ls.Seq {
			b[i] = byte(l)
		}
		reads.add(ls.Name(), b)
	}
	return reads, nil
}

type recordReader interface {
	Read() (*sam.Record, error)
}

// readRecords keeps one sequence per primary record. Reverse-strand records
// are stored reverse complemented, so they are flipped back to read order.
func readRecords(rr recordReader) (*Reads, error) {
	reads := &Reads{}
	skipped := 0
	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", reads.Len()+skipped+1, err)
		}
		if rec.Flags&(sam.Secondary|sam.Supplementary) != 0 {
			skipped++
			continue
		}
		s := rec.Seq.Expand()
		if rec.Flags&sam.Reverse != 0 {
			s = ReverseComplement(s)
		}
		reads.add(rec.Name, s)
	}
	if skipped > 0 {
		log.Debugf("skipped %d secondary/supplementary records", skipped)
	}
	return reads, nil
}

// ReverseComplement returns the reverse complement of s. Bytes other than
// ACGT (either case) are copied unchanged.
func ReverseComplement(s []byte) []byte {
	out := make([]byte, len(s))
	for i, b := range s {
		out[len(s)-1-i] = complement(b)
	}
	return out
}

func complement(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'T':
		return 'A'
	case 'a':
		return 't'
	case 'c':
		return 'g'
	case 'g':
		return 'c'
	case 't':
		return 'a'
	}
	return b
}
