package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/catalogworks/catalog-service/internal/config"
	"github.com/catalogworks/catalog-service/internal/services/images"
)

// Store is the MinIO-backed blob store for image originals and thumbnails.
type Store struct {
	client     *minio.Client
	bucketName string
}

// NewStore creates a new blob store instance
func NewStore(cfg *config.Config) (*Store, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKeyID, cfg.MinIO.SecretAccessKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &Store{
		client:     client,
		bucketName: cfg.MinIO.BucketName,
	}

	if err := store.ensureBucket(); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return store, nil
}

// ensureBucket creates the bucket if it doesn't exist
func (s *Store) ensureBucket() error {
	ctx := context.Background()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Save writes the file content at the resolved path.
func (s *Store) Save(ctx context.Context, file *images.UploadedFile, path string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucketName,
		objectKey(path),
		bytes.NewReader(file.Content),
		int64(len(file.Content)),
		minio.PutObjectOptions{ContentType: file.MimeType},
	)
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}

	return nil
}

// Move relocates an object with a server-side copy followed by a remove, so
// the old path no longer appears in the live object set.
func (s *Store) Move(ctx context.Context, newPath, oldPath string) error {
	src := minio.CopySrcOptions{
		Bucket: s.bucketName,
		Object: objectKey(oldPath),
	}
	dst := minio.CopyDestOptions{
		Bucket: s.bucketName,
		Object: objectKey(newPath),
	}

	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("failed to copy object %s to %s: %w", oldPath, newPath, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey(oldPath), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", oldPath, err)
	}

	return nil
}

// objectKey strips the leading slash of a resolved path; MinIO object keys
// are rooted implicitly.
func objectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}
