package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"

	kv "github.com/rezkam/monodash/internal/storage"
)

// Store is a GCS-based implementation of storage.KeyValue.
// Each key maps to one object named "<prefix>/<key>.json".
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewStore creates a new GCS store.
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS).
func NewStore(ctx context.Context, bucketName, prefix string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Store{
		client: client,
		bucket: bucketName,
		prefix: prefix,
	}, nil
}

func (s *Store) objectName(key string) string {
	return path.Join(s.prefix, key+".json")
}

func (s *Store) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.objectName(key))
}

// Get reads the object for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.object(key).NewReader(ctx)
	if err != nil {
		// Use errors.Is to handle wrapped errors from GCS client
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

// Set overwrites the object for key. GCS object writes are atomic.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	w := s.object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(value); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object: %w", err)
	}
	return nil
}

// Remove deletes the object for key if present.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Close closes the GCS client.
func (s *Store) Close() error {
	return s.client.Close()
}
