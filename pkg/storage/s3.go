package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3URI represents a parsed S3 URI
type S3URI struct {
	Bucket string
	Prefix string
}

// IsS3URI checks if a path is an S3 URI
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ParseS3URI parses an S3 URI like s3://bucket/path/to/dataset
func ParseS3URI(uri string) (*S3URI, error) {
	if !IsS3URI(uri) {
		return nil, fmt.Errorf("invalid S3 URI %q: must start with s3://", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "s3://"), "/", 2)
	if parts[0] == "" {
		return nil, fmt.Errorf("invalid S3 URI %q: missing bucket name", uri)
	}

	u := &S3URI{Bucket: parts[0]}
	if len(parts) == 2 {
		u.Prefix = strings.Trim(parts[1], "/")
	}
	return u, nil
}

// S3Storage implements Storage for AWS S3
type S3Storage struct {
	bucket     string
	prefix     string
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	ctx        context.Context

	uploadedBytes int64
	uploadMutex   sync.Mutex
}

// NewS3Storage creates a new S3 storage backend for s3://bucket/prefix.
// Credentials and region come from the default AWS config chain.
func NewS3Storage(ctx context.Context, path string) (*S3Storage, error) {
	uri, err := ParseS3URI(path)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	return &S3Storage{
		bucket: uri.Bucket,
		prefix: uri.Prefix,
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = 10 * 1024 * 1024
			u.Concurrency = 3
		}),
		downloader: manager.NewDownloader(client),
		ctx:        ctx,
	}, nil
}

func (s *S3Storage) key(path string) string {
	if s.prefix == "" {
		return path
	}
	if path == "" {
		return s.prefix + "/"
	}
	return s.prefix + "/" + path
}

func (s *S3Storage) ReadFile(path string) ([]byte, error) {
	key := s.key(path)

	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := s.downloader.Download(s.ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}

	return buf.Bytes(), nil
}

func (s *S3Storage) WriteFile(path string, data []byte) error {
	key := s.key(path)

	_, err := s.uploader.Upload(s.ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3://%s/%s: %w", s.bucket, key, err)
	}

	s.uploadMutex.Lock()
	s.uploadedBytes += int64(len(data))
	s.uploadMutex.Unlock()

	return nil
}

func (s *S3Storage) List(prefix string) ([]string, error) {
	var files []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(s.ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if s.prefix != "" {
				key = strings.TrimPrefix(key, s.prefix+"/")
			}
			files = append(files, key)
		}
	}

	return files, nil
}

func (s *S3Storage) Exists(path string) (bool, error) {
	_, err := s.client.HeadObject(s.ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MkdirAll is a no-op: S3 has no directories
func (s *S3Storage) MkdirAll(path string) error {
	return nil
}

func (s *S3Storage) BasePath() string {
	if s.prefix == "" {
		return fmt.Sprintf("s3://%s", s.bucket)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

// UploadedBytes returns total bytes uploaded so far
func (s *S3Storage) UploadedBytes() int64 {
	s.uploadMutex.Lock()
	defer s.uploadMutex.Unlock()
	return s.uploadedBytes
}
