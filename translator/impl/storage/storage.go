package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
)

type Client interface {
	SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error
}

type gcsClient struct {
	storageClient *storage.Client
}

func New(storageClient *storage.Client) Client {
	return &gcsClient{storageClient: storageClient}
}

func (s *gcsClient) SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error {
	bucket := s.storageClient.Bucket(bucketName)
	writer := bucket.Object(objectName).NewWriter(ctx)

	_, err := writer.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return nil
}

// localClient treats the bucket name as a directory on disk. E.g., translated_images/image_0.jpg
type localClient struct{}

func NewLocal() Client {
	return &localClient{}
}

func (s *localClient) SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error {
	if err := os.MkdirAll(bucketName, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", bucketName, err)
	}
	// Outputs are flattened into one level.
	target := filepath.Join(bucketName, filepath.Base(objectName))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// mirrorClient saves to the primary client and copies every object to a second bucket.
// Copies are best effort.
type mirrorClient struct {
	primary      Client
	mirror       Client
	mirrorBucket string
	// E.g., the run ID.
	prefix string
}

// NewMirror stores objects as <prefix>/<base of bucket>/<object> in mirrorBucket.
func NewMirror(primary Client, mirror Client, mirrorBucket string, prefix string) Client {
	return &mirrorClient{
		primary:      primary,
		mirror:       mirror,
		mirrorBucket: mirrorBucket,
		prefix:       prefix,
	}
}

func (s *mirrorClient) SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error {
	if err := s.primary.SaveBytes(ctx, bucketName, objectName, data); err != nil {
		return err
	}

	mirrorObject := path.Join(s.prefix, filepath.Base(bucketName), objectName)
	if err := s.mirror.SaveBytes(ctx, s.mirrorBucket, mirrorObject, data); err != nil {
		log.Printf("Failed to mirror %s to %s: %v", mirrorObject, s.mirrorBucket, err)
	}
	return nil
}
