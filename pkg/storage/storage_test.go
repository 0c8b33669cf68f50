package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestLocalStorage(t *testing.T) {
	base := filepath.Join(t.TempDir(), "dataset")
	s, err := NewStorage(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*LocalStorage); !ok || s.BasePath() != base {
		t.Errorf("unexpected backend %T at %s", s, s.BasePath())
	}

	if err := s.WriteFile("examples/A_0.png", []byte("png")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.WriteFile("train_labels.csv", []byte("img_name,label\n")); err != nil {
		t.Fatal(err)
	}

	data, err := s.ReadFile("examples/A_0.png")
	if err != nil || string(data) != "png" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}

	ok, err := s.Exists("examples/A_0.png")
	if err != nil || !ok {
		t.Errorf("Exists = %t, %v", ok, err)
	}
	if ok, _ := s.Exists("missing.png"); ok {
		t.Error("Exists reports a missing file")
	}

	files, err := s.List("")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)
	if len(files) != 2 || files[0] != "examples/A_0.png" || files[1] != "train_labels.csv" {
		t.Errorf("List = %v", files)
	}
}

func TestNewStorageS3(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))

	s, err := NewStorage(context.Background(), "s3://bucket/datasets/w51_h100/")
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	s3, ok := s.(*S3Storage)
	if !ok {
		t.Fatalf("backend is %T, want *S3Storage", s)
	}
	if s3.BasePath() != "s3://bucket/datasets/w51_h100" || s3.key("A_0.png") != "datasets/w51_h100/A_0.png" {
		t.Errorf("base %s, key %s", s3.BasePath(), s3.key("A_0.png"))
	}
	if s3.UploadedBytes() != 0 {
		t.Errorf("UploadedBytes = %d before any upload", s3.UploadedBytes())
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		prefix string
		ok     bool
	}{
		{"s3://bucket/datasets/w51_h100/", "bucket", "datasets/w51_h100", true},
		{"s3://bucket", "bucket", "", true},
		{"s3:///prefix", "", "", false},
		{"/local/path", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			u, err := ParseS3URI(tt.uri)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v, want ok = %t", err, tt.ok)
			}
			if tt.ok && (u.Bucket != tt.bucket || u.Prefix != tt.prefix) {
				t.Errorf("got %+v", u)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	if got := Join("s3://bucket/out/", "train", "A_0.png"); got != "s3://bucket/out/train/A_0.png" {
		t.Errorf("Join(s3) = %s", got)
	}
	if got := Join("/data/out", "train"); got != filepath.Join("/data/out", "train") {
		t.Errorf("Join(local) = %s", got)
	}
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		path string
		want string
		trim string
	}{
		{"part_0.msa", CompressionNone, "part_0.msa"},
		{"part_0.msa.gz", CompressionGzip, "part_0.msa"},
		{"reads.FQ.ZST", CompressionZstd, "reads.FQ"},
	}
	for _, tt := range tests {
		if got := DetectCompression(tt.path); got != tt.want {
			t.Errorf("DetectCompression(%s) = %s, want %s", tt.path, got, tt.want)
		}
		if got := TrimCompression(tt.path); got != tt.trim {
			t.Errorf("TrimCompression(%s) = %s, want %s", tt.path, got, tt.trim)
		}
	}
}

func TestOpenReaderZstd(t *testing.T) {
	want := []byte("1 4 0 0\n0 ACGT\n")

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write(want); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "part_0.msa.zst")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	rc, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("read %q, want %q", got, want)
	}
}

func TestNewDecompressorUnknown(t *testing.T) {
	if _, err := NewDecompressor(bytes.NewReader(nil), "lz4"); err == nil {
		t.Error("unknown compression accepted")
	}
}
