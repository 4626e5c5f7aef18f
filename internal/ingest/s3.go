package ingest

// s3.go mirrors archived snapshots to object storage. Uploads are best
// effort: the local parquet file and the raw table are authoritative, so an
// upload failure is reported but never rolls back ingestion.

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/astomelio/data-engineer-challenge-2025/internal/errdefs"
)

// Uploader mirrors a local archive file to remote storage.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (remoteURI string, err error)
}

// S3Uploader uploads archive files to an S3 bucket under a fixed key
// prefix.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Uploader builds an uploader using the ambient AWS credential chain.
func NewS3Uploader(ctx context.Context, bucket, prefix string) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &S3Uploader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Upload puts the file at localPath into the bucket as <prefix>/<basename>.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	key := path.Join(u.prefix, filepath.Base(localPath))

	body, err := os.ReadFile(localPath)
	if err != nil {
		return "", &errdefs.UploadError{Bucket: u.bucket, Key: key, Err: err}
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return "", &errdefs.UploadError{Bucket: u.bucket, Key: key, Err: err}
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
