package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const gcsConnectTimeout = 30 * time.Second

// GCSStore stores objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCSStore connects to GCS and binds the named bucket.
// credentialsFile may be empty to use ambient credentials.
func NewGCSStore(ctx context.Context, bucketName, credentialsFile string) (*GCSStore, error) {
	if bucketName == "" {
		return nil, errors.New("gcs blob: bucket not set")
	}

	ctx, cancel := context.WithTimeout(ctx, gcsConnectTimeout)
	defer cancel()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs blob: create client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs blob: write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs blob: commit %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gcs blob: open %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs blob: read %s: %w", key, err)
	}
	return data, nil
}

func (s *GCSStore) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		if limit > 0 && len(keys) >= limit {
			return keys, nil
		}
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return keys, nil
		}
		if err != nil {
			return keys, fmt.Errorf("gcs blob: list %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("gcs blob: delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
