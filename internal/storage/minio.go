// Package storage archives uploaded evidence files to an S3-compatible
// object store. Archival is best-effort operational plumbing: the pipeline
// itself only ever reads the local copies.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"claimpilot/internal/model"
)

// Archiver stores evidence files under claim-scoped keys.
type Archiver interface {
	// Put uploads one object using streaming I/O.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// minioArchiver implements Archiver against MinIO or any S3-compatible
// backend. Safe for concurrent use.
type minioArchiver struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates an archiver backed by MinIO, validating connectivity and
// creating the bucket if missing.
func NewMinIO(cfg model.ArchiveConfig) (Archiver, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("archive endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("archive credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioArchiver{client: cli, bucket: cfg.Bucket}, nil
}

// Put uploads an object under the given key.
func (m *minioArchiver) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}
