package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rezkam/monodash/internal/storage"
)

const (
	fileSuffix      = ".json"
	defaultDebounce = 250 * time.Millisecond
)

// Store is a filesystem-based implementation of storage.KeyValue.
// Every key is kept in its own JSON file inside baseDir.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// written remembers the last payload this store wrote per key so that
	// the watcher can ignore its own writes.
	written map[string][]byte
}

// NewStore creates a new filesystem store.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{baseDir: baseDir, written: make(map[string][]byte)}, nil
}

func (s *Store) getFilePath(key string) (string, error) {
	if key == "" || key == "." || key == ".." || filepath.Base(key) != key || strings.ContainsRune(key, os.PathSeparator) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.baseDir, key+fileSuffix), nil
}

// Get reads the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.getFilePath(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Set writes the payload to a temporary file and renames it over the target,
// so readers never observe a partially written file.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.getFilePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace file: %w", err)
	}

	s.written[key] = bytes.Clone(value)
	return nil
}

// Remove deletes the file for key. A missing file is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.getFilePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	delete(s.written, key)
	return nil
}

// Close is a no-op; the store holds no open handles.
func (s *Store) Close() error { return nil }

// isOwnWrite reports whether the file for key still holds the payload this
// store last wrote.
func (s *Store) isOwnWrite(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	last, ok := s.written[key]
	if !ok {
		return false
	}
	path, err := s.getFilePath(key)
	if err != nil {
		return false
	}
	current, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return bytes.Equal(last, current)
}

// Watch monitors baseDir for changes made by other processes and calls
// onChange once per burst of events. It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, debounce time.Duration, onChange func(ctx context.Context)) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.ErrorContext(ctx, "error closing file watcher", "error", err)
		}
	}()

	// Watch the directory rather than the files; atomic renames replace the inode.
	if err := watcher.Add(s.baseDir); err != nil {
		return fmt.Errorf("failed to watch storage directory %s: %w", s.baseDir, err)
	}
	slog.InfoContext(ctx, "watching storage directory", "dir", s.baseDir)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileSuffix) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			key := strings.TrimSuffix(name, fileSuffix)
			if s.isOwnWrite(key) {
				continue
			}

			slog.DebugContext(ctx, "external storage change detected", "key", key, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.ErrorContext(ctx, "storage watcher error", "error", err)
		}
	}
}
