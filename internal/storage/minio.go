package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements BlobStore on an S3-compatible object store, one
// bucket per asset kind. Image paths are stored with the public URL prefix,
// mirroring the local backend.
type MinioStore struct {
	client        *minio.Client
	privateBucket string
	publicBucket  string
	publicPrefix  string
}

// MinioOptions holds the connection settings for the object store.
type MinioOptions struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PrivateBucket string
	PublicBucket  string
	PublicPrefix  string
}

// NewMinioStore connects to the object store and ensures both buckets exist.
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	for _, bucket := range []string{opts.PrivateBucket, opts.PublicBucket} {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket %q: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
			}
		}
	}

	return &MinioStore{
		client:        client,
		privateBucket: opts.PrivateBucket,
		publicBucket:  opts.PublicBucket,
		publicPrefix:  strings.TrimSuffix(opts.PublicPrefix, "/"),
	}, nil
}

// Put uploads data under a freshly generated object name.
func (s *MinioStore) Put(ctx context.Context, kind Kind, originalName string, data []byte) (string, error) {
	name := NewBlobName(originalName)
	bucket := s.bucket(kind)

	_, err := s.client.PutObject(ctx, bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s asset to bucket %q: %w", kind, bucket, err)
	}
	if kind == KindImage {
		return s.publicPrefix + "/" + name, nil
	}
	return name, nil
}

// Open returns a reader over a previously stored object. The object is read
// eagerly so a missing object surfaces here rather than on first read.
func (s *MinioStore) Open(ctx context.Context, kind Kind, path string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket(kind), s.objectName(kind, path), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s asset %q: %w", kind, path, err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("failed to stat %s asset %q: %w", kind, path, err)
	}
	return obj, nil
}

// Remove deletes a stored object, tolerating objects that are already gone.
func (s *MinioStore) Remove(ctx context.Context, kind Kind, path string) error {
	err := s.client.RemoveObject(ctx, s.bucket(kind), s.objectName(kind, path), minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to remove %s asset %q: %w", kind, path, err)
	}
	return nil
}

func (s *MinioStore) bucket(kind Kind) string {
	if kind == KindImage {
		return s.publicBucket
	}
	return s.privateBucket
}

// objectName maps a stored path back to the object name within its bucket.
func (s *MinioStore) objectName(kind Kind, path string) string {
	if kind == KindImage {
		return strings.TrimPrefix(path, s.publicPrefix+"/")
	}
	return path
}
