package todo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Listener is notified after every state change. It receives no payload;
// listeners re-query the service for items, filter and summary.
type Listener func(ctx context.Context) error

// listenerRegistry keeps subscribed listeners in registration order.
type listenerRegistry struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []registeredListener
}

type registeredListener struct {
	id uint64
	fn Listener
}

func (r *listenerRegistry) add(fn Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, registeredListener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *listenerRegistry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, l := range r.listeners {
		if l.id == id {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return
		}
	}
}

func (r *listenerRegistry) snapshot() []registeredListener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]registeredListener(nil), r.listeners...)
}

// notify calls every listener in order. A failing or panicking listener is
// logged and skipped.
func (r *listenerRegistry) notify(ctx context.Context) {
	for _, l := range r.snapshot() {
		if err := callListener(ctx, l.fn); err != nil {
			slog.ErrorContext(ctx, "state change notification failed",
				"listener_id", l.id,
				"error", err)
		}
	}
}

func callListener(ctx context.Context, fn Listener) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("listener panic: %v", p)
		}
	}()
	return fn(ctx)
}
