package natskv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/rezkam/monodash/internal/storage"
)

// Config selects the NATS server and key/value bucket.
type Config struct {
	URL    string
	Bucket string
}

// Store implements storage.KeyValue on a JetStream key/value bucket.
type Store struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	kv     jetstream.KeyValue
	bucket string
}

// NewStore connects to NATS and opens the bucket, creating it if needed.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("nats key/value bucket is required")
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("monodash"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := openBucket(ctx, js, cfg.Bucket)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize KV bucket: %w", err)
	}

	slog.InfoContext(ctx, "NATS key/value store initialized", "url", cfg.URL, "bucket", cfg.Bucket)
	return &Store{conn: conn, js: js, kv: kv, bucket: cfg.Bucket}, nil
}

// openBucket returns the existing bucket or creates it.
func openBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}

	kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "monodash todo state",
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create KV bucket: %w", err)
	}
	slog.InfoContext(ctx, "created KV bucket", "bucket", bucket)
	return kv, nil
}

// Get returns the latest revision stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get entry %s: %w", key, err)
	}
	return entry.Value(), nil
}

// Set stores a new revision under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("failed to put entry %s: %w", key, err)
	}
	return nil
}

// Remove purges key. Purging an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.kv.Purge(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to purge entry %s: %w", key, err)
	}
	return nil
}

// Close drains the NATS connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Drain()
	}
	return nil
}
