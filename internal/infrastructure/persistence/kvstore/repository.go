// Package kvstore implements the todo Repository on top of a storage.KeyValue
// transport. Items and filter are stored as JSON documents under versioned keys.
package kvstore

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rezkam/monodash/internal/domain"
	"github.com/rezkam/monodash/internal/storage"
)

// Storage keys.
const (
	ItemsKey  = "todoItems.v1"
	FilterKey = "todoFilter.v1"
)

const schemaURL = "https://monodash.local/schema/todo_items.schema.json"

//go:embed schema/todo_items.schema.json
var itemsSchema string

// Repository persists todo state through a key/value transport.
// It holds no state of its own besides the compiled payload schema.
type Repository struct {
	store  storage.KeyValue
	schema *jsonschema.Schema
}

// NewRepository creates a repository backed by store.
func NewRepository(store storage.KeyValue) (*Repository, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(schemaURL, bytes.NewReader([]byte(itemsSchema))); err != nil {
		return nil, fmt.Errorf("add items schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile items schema: %w", err)
	}

	return &Repository{store: store, schema: schema}, nil
}

// Load returns the persisted items. Missing, empty or unreadable payloads
// yield an empty slice; corrupt payloads are removed from storage.
func (r *Repository) Load(ctx context.Context) ([]*domain.TodoItem, error) {
	data, err := r.store.Get(ctx, ItemsKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return []*domain.TodoItem{}, nil
		}
		if isCancellation(err) {
			return nil, err
		}
		slog.WarnContext(ctx, "failed to read persisted todos, starting empty", "key", ItemsKey, "error", err)
		return []*domain.TodoItem{}, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []*domain.TodoItem{}, nil
	}

	items, err := r.decodeItems(trimmed)
	if err != nil {
		slog.WarnContext(ctx, "discarding corrupt todo payload", "key", ItemsKey, "error", err)
		if rmErr := r.store.Remove(ctx, ItemsKey); rmErr != nil {
			slog.ErrorContext(ctx, "failed to remove corrupt todo payload", "key", ItemsKey, "error", rmErr)
		}
		return []*domain.TodoItem{}, nil
	}
	return items, nil
}

func (r *Repository) decodeItems(data []byte) ([]*domain.TodoItem, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	if err := r.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("payload does not match schema: %w", err)
	}

	var records []todoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	items := make([]*domain.TodoItem, 0, len(records))
	for i, rec := range records {
		item, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Save replaces the persisted items with the given snapshot.
func (r *Repository) Save(ctx context.Context, items []domain.TodoItem) error {
	records := make([]todoRecord, 0, len(items))
	for _, item := range items {
		records = append(records, recordFromDomain(item))
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: failed to encode todos: %w", domain.ErrStorage, err)
	}
	if err := r.store.Set(ctx, ItemsKey, data); err != nil {
		return fmt.Errorf("%w: failed to write todos: %w", domain.ErrStorage, err)
	}
	return nil
}

// LoadFilter returns the persisted filter, or the default when absent.
// Unparseable or unknown values are reset to the default and written back.
func (r *Repository) LoadFilter(ctx context.Context) (domain.TodoFilter, error) {
	data, err := r.store.Get(ctx, FilterKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return domain.DefaultFilter(), nil
		}
		if isCancellation(err) {
			return domain.TodoFilter{}, err
		}
		slog.WarnContext(ctx, "failed to read persisted filter, using default", "key", FilterKey, "error", err)
		return domain.DefaultFilter(), nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.DefaultFilter(), nil
	}

	var rec filterRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		slog.WarnContext(ctx, "resetting unreadable filter payload", "key", FilterKey, "error", err)
		return r.resetFilter(ctx), nil
	}

	selection, ok := domain.ParseFilterSelection(rec.Selection)
	if !ok {
		slog.WarnContext(ctx, "resetting unknown filter selection", "key", FilterKey, "selection", rec.Selection)
		return r.resetFilter(ctx), nil
	}
	return domain.FilterFromSelection(selection), nil
}

func (r *Repository) resetFilter(ctx context.Context) domain.TodoFilter {
	filter := domain.DefaultFilter()
	if err := r.SaveFilter(ctx, filter); err != nil {
		slog.ErrorContext(ctx, "failed to persist default filter", "error", err)
	}
	return filter
}

// SaveFilter persists the filter selection by name.
func (r *Repository) SaveFilter(ctx context.Context, filter domain.TodoFilter) error {
	data, err := json.Marshal(filterRecord{Selection: filter.Selection().String()})
	if err != nil {
		return fmt.Errorf("%w: failed to encode filter: %w", domain.ErrStorage, err)
	}
	if err := r.store.Set(ctx, FilterKey, data); err != nil {
		return fmt.Errorf("%w: failed to write filter: %w", domain.ErrStorage, err)
	}
	return nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
