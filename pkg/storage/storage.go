// Package storage reads and writes dataset files on the local filesystem or
// in S3, and opens compressed input files.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Storage is an interface for reading/writing dataset files.
// Paths are relative to the backend's base path and use '/' separators.
type Storage interface {
	// ReadFile reads a file
	ReadFile(path string) ([]byte, error)

	// WriteFile writes a file, creating parent directories as needed
	WriteFile(path string, data []byte) error

	// List lists files below prefix, recursively
	List(prefix string) ([]string, error)

	// Exists checks if a file exists
	Exists(path string) (bool, error)

	// MkdirAll creates directory structure
	MkdirAll(path string) error

	// BasePath returns the base path or URI
	BasePath() string
}

// NewStorage creates the appropriate backend for path: S3 for s3:// URIs,
// the local filesystem otherwise.
func NewStorage(ctx context.Context, path string) (Storage, error) {
	if IsS3URI(path) {
		return NewS3Storage(ctx, path)
	}
	return NewLocalStorage(path), nil
}

// LocalStorage implements Storage for the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage backend
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

func (s *LocalStorage) full(path string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(path))
}

func (s *LocalStorage) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(s.full(path))
}

func (s *LocalStorage) WriteFile(path string, data []byte) error {
	fullPath := s.full(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

func (s *LocalStorage) List(prefix string) ([]string, error) {
	var files []string

	err := filepath.Walk(s.full(prefix), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})

	return files, err
}

func (s *LocalStorage) Exists(path string) (bool, error) {
	_, err := os.Stat(s.full(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *LocalStorage) MkdirAll(path string) error {
	return os.MkdirAll(s.full(path), 0755)
}

func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// Join joins a base location and relative elements, keeping the s3:// scheme
// intact for S3 URIs.
func Join(base string, elem ...string) string {
	if IsS3URI(base) {
		parts := append([]string{strings.TrimSuffix(base, "/")}, elem...)
		return strings.Join(parts, "/")
	}
	return filepath.Join(append([]string{base}, elem...)...)
}
