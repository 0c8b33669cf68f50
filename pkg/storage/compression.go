package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression names returned by DetectCompression
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

// DetectCompression returns the compression implied by a file name
func DetectCompression(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	}
	return CompressionNone
}

// TrimCompression strips a compression suffix so the inner extension can be
// inspected, e.g. "reads.fq.gz" -> "reads.fq".
func TrimCompression(path string) string {
	if DetectCompression(path) == CompressionNone {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// OpenReader opens a local file and decompresses it on the fly when its name
// ends in .gz or .zst.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rc, err := NewDecompressor(f, DetectCompression(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rc, nil
}

// NewDecompressor wraps r according to compression. Closing the result closes r
// when r is an io.Closer.
func NewDecompressor(r io.Reader, compression string) (io.ReadCloser, error) {
	switch compression {
	case CompressionNone, "":
		return &readCloser{Reader: r, closers: closersOf(r)}, nil

	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &readCloser{Reader: zr, closers: append([]func() error{zr.Close}, closersOf(r)...)}, nil

	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		release := func() error {
			zr.Close()
			return nil
		}
		return &readCloser{Reader: zr, closers: append([]func() error{release}, closersOf(r)...)}, nil
	}

	return nil, fmt.Errorf("unsupported compression %q", compression)
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func closersOf(r io.Reader) []func() error {
	if c, ok := r.(io.Closer); ok {
		return []func() error{c.Close}
	}
	return nil
}
