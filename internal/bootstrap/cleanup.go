package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// newCleanup builds the shutdown hook: stop listening for changes, drain the
// publisher, then close the shared store.
func newCleanup(unsubscribe func(), publisher, store io.Closer) func() error {
	return func() error {
		if unsubscribe != nil {
			unsubscribe()
		}

		var errs []error
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				slog.Error("failed to close change publisher", slog.String("error", err.Error()))
				errs = append(errs, fmt.Errorf("publisher: %w", err))
			}
		}
		if store != nil {
			if err := store.Close(); err != nil {
				slog.Error("failed to close store", slog.String("error", err.Error()))
				errs = append(errs, fmt.Errorf("store: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}
