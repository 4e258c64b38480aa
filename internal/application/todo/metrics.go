package todo

import (
	"context"
	"errors"
	"time"

	"github.com/rezkam/monodash/internal/domain"
)

// Command outcomes reported to a Recorder.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeDuplicate  = "duplicate"
	OutcomeNotFound   = "not_found"
	OutcomeStorage    = "storage"
	OutcomeCancelled  = "cancelled"
	OutcomeError      = "error"
)

// Recorder receives command metrics from the state service.
type Recorder interface {
	ObserveCommand(command, outcome string, duration time.Duration)
	SetSummary(summary domain.DashboardSummary)
}

// NoopRecorder discards all metrics.
type NoopRecorder struct{}

func (NoopRecorder) ObserveCommand(string, string, time.Duration) {}
func (NoopRecorder) SetSummary(domain.DashboardSummary)         {}

// CommandOutcome classifies a command error into one of the Outcome* labels.
func CommandOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, domain.ErrDuplicateTitle):
		return OutcomeDuplicate
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrStorage):
		return OutcomeStorage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}
