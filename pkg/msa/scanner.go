package msa

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/scttfrdmn/deepcare-go/pkg/storage"
)

// maxLineSize bounds a single dump line; rows of long reads in wide blocks
// easily exceed bufio's 64K default.
const maxLineSize = 16 * 1024 * 1024

// RawBlock is the unparsed text of one block
type RawBlock struct {
	Lines     []string // Header followed by the row lines
	FirstLine int      // 1-based line number of the header
}

// Parse parses the raw block
func (rb RawBlock) Parse() (*Block, error) {
	b, _, err := ParseBlock(rb.Lines)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", rb.FirstLine, err)
	}
	b.FirstLine = rb.FirstLine
	return b, nil
}

// Scanner reads consecutive blocks from an MSA dump
type Scanner struct {
	lines  *bufio.Scanner
	lineNo int
	raw    RawBlock
	block  *Block
	err    error
}

// NewScanner returns a Scanner reading from r
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Scanner{lines: s}
}

func (s *Scanner) nextLine() (string, bool) {
	if !s.lines.Scan() {
		return "", false
	}
	s.lineNo++
	return strings.TrimRight(s.lines.Text(), "\r"), true
}

// ScanRaw advances to the next block without parsing its rows. It returns
// false at end of input or on error; check Err.
func (s *Scanner) ScanRaw() bool {
	s.block = nil
	if s.err != nil {
		return false
	}

	var header string
	for {
		line, ok := s.nextLine()
		if !ok {
			s.err = s.lines.Err()
			return false
		}
		if strings.TrimSpace(line) != "" {
			header = line
			break
		}
	}

	first := s.lineNo
	h, err := ParseHeader(header)
	if err != nil {
		s.err = fmt.Errorf("line %d: %w", first, err)
		return false
	}

	lines := make([]string, 1, h.Rows+1)
	lines[0] = header
	for i := 0; i < h.Rows; i++ {
		line, ok := s.nextLine()
		if !ok {
			if err := s.lines.Err(); err != nil {
				s.err = err
			} else {
				s.err = fmt.Errorf("line %d: %w: header declares %d rows, input ends after %d",
					first, ErrMalformed, h.Rows, i)
			}
			return false
		}
		lines = append(lines, line)
	}

	s.raw = RawBlock{Lines: lines, FirstLine: first}
	return true
}

// Scan advances to the next block and parses it
func (s *Scanner) Scan() bool {
	if !s.ScanRaw() {
		return false
	}
	b, err := s.raw.Parse()
	if err != nil {
		s.err = err
		return false
	}
	s.block = b
	return true
}

// Raw returns the text of the current block
func (s *Scanner) Raw() RawBlock {
	return s.raw
}

// Block returns the block parsed by the last call to Scan
func (s *Scanner) Block() *Block {
	return s.block
}

// Err returns the first error encountered, nil at clean end of input
func (s *Scanner) Err() error {
	return s.err
}

// File is an open MSA dump
type File struct {
	*Scanner
	Path string
	rc   io.ReadCloser
}

// OpenFile opens an MSA dump; .gz and .zst files are decompressed on the fly
func OpenFile(path string) (*File, error) {
	rc, err := storage.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MSA file: %w", err)
	}
	return &File{Scanner: NewScanner(rc), Path: path, rc: rc}, nil
}

// Close closes the underlying file
func (f *File) Close() error {
	return f.rc.Close()
}
