package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioSink implements Sink on S3-compatible object storage.
type MinioSink struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// MinioConfig holds the connection settings for an object-storage sink.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the externally reachable base URL for stored objects,
	// e.g. a CDN or the storage server itself.
	PublicURL string
}

// NewMinioSink connects to the object store and ensures the bucket exists.
func NewMinioSink(ctx context.Context, cfg MinioConfig) (*MinioSink, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	if i := strings.Index(endpoint, "/"); i != -1 {
		endpoint = endpoint[:i]
	}

	// The default transport keeps only 2 idle conns per host, which causes
	// connection churn when many images load concurrently.
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioSink{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Store uploads content as a uuid-sharded object.
func (s *MinioSink) Store(ctx context.Context, suggestedName string, content io.Reader) (*StoredObject, error) {
	objectName := objectPath(suggestedName)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, content, -1, minio.PutObjectOptions{
		ContentType: "image/webp",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	return &StoredObject{
		URL:      fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName),
		PublicID: objectName,
	}, nil
}

// Delete removes an object from the bucket.
func (s *MinioSink) Delete(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Open streams an object's content.
func (s *MinioSink) Open(ctx context.Context, publicID string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, publicID, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, nil
}
