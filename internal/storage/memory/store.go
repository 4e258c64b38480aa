package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/rezkam/monodash/internal/storage"
)

// Store is an in-memory implementation of storage.KeyValue.
// Values are copied on the way in and out.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := bytes.Clone(value)
	if v == nil {
		v = []byte{}
	}
	s.values[key] = v
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *Store) Close() error { return nil }
