package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// StateChangedEvent is the SSE event name sent after every state change.
const StateChangedEvent = "state-changed"

const keepAliveInterval = 30 * time.Second

// Events streams one state-changed event per service notification.
// Bursts that arrive faster than the client reads are coalesced.
// GET /api/events
func (h *TodoHandler) Events(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut long-lived streams.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.WarnContext(r.Context(), "failed to clear write deadline for event stream", "error", err)
	}

	changed := make(chan struct{}, 1)
	unsubscribe := h.svc.Subscribe(func(context.Context) error {
		select {
		case changed <- struct{}{}:
		default:
		}
		return nil
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if !writeEvent(rc, w, ": connected\n\n") {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			if !writeEvent(rc, w, "event: "+StateChangedEvent+"\ndata:\n\n") {
				return
			}
		case <-keepAlive.C:
			if !writeEvent(rc, w, ": keep-alive\n\n") {
				return
			}
		}
	}
}

func writeEvent(rc *http.ResponseController, w http.ResponseWriter, frame string) bool {
	if _, err := w.Write([]byte(frame)); err != nil {
		return false
	}
	return rc.Flush() == nil
}
