package todo

import (
	"context"

	"github.com/rezkam/monodash/internal/domain"
)

// Repository defines the persistence operations the state service depends on.
// Implementations are stateless transports to durable storage and are only
// invoked by StateService.
type Repository interface {
	// Load returns all persisted items.
	// Returns an empty slice when nothing is stored or the stored payload is
	// unreadable; implementations log and clear corrupt payloads themselves.
	// Context cancellation is returned as an error.
	Load(ctx context.Context) ([]*domain.TodoItem, error)

	// Save replaces every persisted item with the given snapshot.
	// Failures wrap domain.ErrStorage.
	Save(ctx context.Context, items []domain.TodoItem) error

	// LoadFilter returns the persisted filter, or domain.DefaultFilter() when
	// absent. An invalid stored value is reset to the default and re-persisted.
	LoadFilter(ctx context.Context) (domain.TodoFilter, error)

	// SaveFilter persists the given filter. Failures wrap domain.ErrStorage.
	SaveFilter(ctx context.Context, filter domain.TodoFilter) error
}
