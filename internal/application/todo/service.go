package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/monodash/internal/domain"
)

const tracerName = "github.com/rezkam/monodash/internal/application/todo"

// Config holds configuration for the StateService.
type Config struct {
	// Clock supplies the current time for timestamps and due day checks.
	// Defaults to time.Now.
	Clock func() time.Time

	// Recorder receives command metrics. Defaults to NoopRecorder.
	Recorder Recorder
}

// StateService owns the authoritative in-memory todo collection and the
// current filter. It validates commands, persists through the Repository
// after every mutation, recomputes the dashboard summary and notifies
// subscribed listeners.
//
// Commands are serialized by an internal mutex. Listeners run after the
// mutex is released but before the command returns, so they may read the
// service or issue further commands.
type StateService struct {
	repo     Repository
	clock    func() time.Time
	recorder Recorder
	tracer   trace.Tracer

	mu          sync.Mutex
	items       []*domain.TodoItem // ascending by CreatedAt
	filter      domain.TodoFilter
	summary     domain.DashboardSummary
	initialized bool

	listeners listenerRegistry
}

// NewStateService creates a new state service.
// Applies defaults for zero config values.
func NewStateService(repo Repository, cfg Config) *StateService {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NoopRecorder{}
	}

	return &StateService{
		repo:     repo,
		clock:    cfg.Clock,
		recorder: cfg.Recorder,
		tracer:   otel.Tracer(tracerName),
		filter:   domain.DefaultFilter(),
		summary:  domain.DashboardSummary{Filter: domain.FilterAll},
	}
}

// Subscribe registers a listener for state changes and returns a function
// that removes it. The returned function is safe to call more than once.
func (s *StateService) Subscribe(l Listener) (unsubscribe func()) {
	return s.listeners.add(l)
}

// Initialize loads items and filter from the repository. It is a no-op once
// the service is initialized. If loading fails (including cancellation) the
// service stays uninitialized so a later call can retry.
func (s *StateService) Initialize(ctx context.Context) error {
	return s.run(ctx, "initialize", func(ctx context.Context) (bool, error) {
		return s.ensureInitialized(ctx)
	})
}

// Reload discards the in-memory state and loads it again from the repository,
// even when already initialized.
func (s *StateService) Reload(ctx context.Context) error {
	return s.run(ctx, "reload", func(ctx context.Context) (bool, error) {
		return s.load(ctx)
	})
}

// AddTodo validates and appends a new item, then persists the collection.
// On a storage error the item stays in memory and is returned with the error.
func (s *StateService) AddTodo(ctx context.Context, title, note string, dueDay domain.Day) (domain.TodoItem, error) {
	var added domain.TodoItem
	err := s.run(ctx, "add", func(ctx context.Context) (bool, error) {
		changed, err := s.ensureInitialized(ctx)
		if err != nil {
			return changed, err
		}

		item, err := domain.NewTodoItem(title, note, dueDay, s.clock())
		if err != nil {
			return changed, err
		}
		if err := s.ensureUniqueTitle(ctx, item.NormalizedTitleKey(), ""); err != nil {
			return changed, err
		}

		s.items = append(s.items, item)
		added = *item
		slog.InfoContext(ctx, "added todo", "todo_id", item.ID(), "title", item.Title())
		return true, s.persist(ctx)
	})
	return added, err
}

// UpdateTodo replaces title, note and due day of an existing item.
// Keeping an item's own title never counts as a duplicate.
func (s *StateService) UpdateTodo(ctx context.Context, id, title, note string, dueDay domain.Day) (domain.TodoItem, error) {
	var updated domain.TodoItem
	err := s.run(ctx, "update", func(ctx context.Context) (bool, error) {
		changed, err := s.ensureInitialized(ctx)
		if err != nil {
			return changed, err
		}

		existing, err := s.find(id)
		if err != nil {
			return changed, err
		}
		newTitle, err := domain.NewTitle(title)
		if err != nil {
			return changed, err
		}
		if err := s.ensureUniqueTitle(ctx, newTitle.Key(), id); err != nil {
			return changed, err
		}
		if err := existing.UpdateDetails(title, note, dueDay, s.clock()); err != nil {
			return changed, err
		}

		updated = *existing
		slog.InfoContext(ctx, "updated todo", "todo_id", existing.ID(), "title", existing.Title())
		return true, s.persist(ctx)
	})
	return updated, err
}

// ToggleTodo flips the completion flag of an existing item.
func (s *StateService) ToggleTodo(ctx context.Context, id string) (domain.TodoItem, error) {
	var toggled domain.TodoItem
	err := s.run(ctx, "toggle", func(ctx context.Context) (bool, error) {
		changed, err := s.ensureInitialized(ctx)
		if err != nil {
			return changed, err
		}

		existing, err := s.find(id)
		if err != nil {
			return changed, err
		}
		existing.SetCompletion(!existing.IsCompleted(), s.clock())

		toggled = *existing
		slog.InfoContext(ctx, "toggled todo", "todo_id", existing.ID(), "completed", existing.IsCompleted())
		return true, s.persist(ctx)
	})
	return toggled, err
}

// DeleteTodo removes an item from the collection.
func (s *StateService) DeleteTodo(ctx context.Context, id string) error {
	return s.run(ctx, "delete", func(ctx context.Context) (bool, error) {
		changed, err := s.ensureInitialized(ctx)
		if err != nil {
			return changed, err
		}

		before := len(s.items)
		s.items = slices.DeleteFunc(s.items, func(item *domain.TodoItem) bool {
			return item.ID() == id
		})
		if len(s.items) == before {
			return changed, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}

		slog.InfoContext(ctx, "deleted todo", "todo_id", id, "remaining", len(s.items))
		return true, s.persist(ctx)
	})
}

// SetFilter changes the current filter and persists it. Invalid selections
// are coerced to All. Setting the current selection again is a no-op.
func (s *StateService) SetFilter(ctx context.Context, selection domain.FilterSelection) error {
	return s.run(ctx, "set_filter", func(ctx context.Context) (bool, error) {
		changed, err := s.ensureInitialized(ctx)
		if err != nil {
			return changed, err
		}

		next := s.filter.WithSelection(selection)
		if next == s.filter {
			return changed, nil
		}

		s.filter = next
		slog.InfoContext(ctx, "changed todo filter", "filter", next.Selection().String())
		if err := s.repo.SaveFilter(ctx, next); err != nil {
			return true, storageError(ctx, "save filter", err)
		}
		return true, nil
	})
}

// Items returns a copy of all items, ascending by creation time.
func (s *StateService) Items() []domain.TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.TodoItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out
}

// FilteredItems returns a copy of the items visible under the current filter.
func (s *StateService) FilteredItems() []domain.TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.TodoItem, 0, len(s.items))
	for _, item := range s.items {
		if s.filter.Matches(*item) {
			out = append(out, *item)
		}
	}
	return out
}

// Snapshot is the service state read at one instant.
type Snapshot struct {
	Items    []domain.TodoItem // ascending by creation time
	Filtered []domain.TodoItem // Items visible under Filter
	Summary  domain.DashboardSummary
	Filter   domain.TodoFilter
}

// State returns items, summary and filter taken under a single lock, so they
// always agree with each other.
func (s *StateService) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Items:    make([]domain.TodoItem, 0, len(s.items)),
		Filtered: make([]domain.TodoItem, 0, len(s.items)),
		Summary:  s.summary,
		Filter:   s.filter,
	}
	for _, item := range s.items {
		snap.Items = append(snap.Items, *item)
		if s.filter.Matches(*item) {
			snap.Filtered = append(snap.Filtered, *item)
		}
	}
	return snap
}

// CurrentFilter returns the active filter.
func (s *StateService) CurrentFilter() domain.TodoFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Summary returns the dashboard counts computed after the last change.
func (s *StateService) Summary() domain.DashboardSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// IsInitialized reports whether state has been loaded from the repository.
func (s *StateService) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// run executes fn under the service mutex inside a span. When fn reports a
// state change the summary is recomputed and, after unlocking, listeners are
// notified. The change is reported even when fn also returns an error, which
// happens when persisting fails after the in-memory mutation.
func (s *StateService) run(ctx context.Context, command string, fn func(ctx context.Context) (bool, error)) error {
	ctx, span := s.tracer.Start(ctx, "todo."+command)
	defer span.End()
	start := time.Now()

	s.mu.Lock()
	changed, err := fn(ctx)
	var summary domain.DashboardSummary
	if changed {
		s.summary = domain.Summarize(s.items, s.filter)
		summary = s.summary
	}
	s.mu.Unlock()

	if changed {
		s.recorder.SetSummary(summary)
		s.listeners.notify(ctx)
	}

	outcome := CommandOutcome(err)
	s.recorder.ObserveCommand(command, outcome, time.Since(start))
	span.SetAttributes(
		attribute.String("todo.outcome", outcome),
		attribute.Bool("todo.state_changed", changed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// ensureInitialized loads state on first use. Caller must hold s.mu.
func (s *StateService) ensureInitialized(ctx context.Context) (bool, error) {
	if s.initialized {
		return false, nil
	}
	return s.load(ctx)
}

// load replaces in-memory state with repository contents. Caller must hold s.mu.
func (s *StateService) load(ctx context.Context) (bool, error) {
	slog.InfoContext(ctx, "initializing todo state")

	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load todos: %w", err)
	}
	filter, err := s.repo.LoadFilter(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load todo filter: %w", err)
	}

	items := make([]*domain.TodoItem, 0, len(loaded))
	for _, item := range loaded {
		if item != nil {
			items = append(items, item)
		}
	}
	slices.SortStableFunc(items, func(a, b *domain.TodoItem) int {
		return a.CreatedAt().Compare(b.CreatedAt())
	})

	s.items = items
	s.filter = filter
	s.initialized = true

	slog.InfoContext(ctx, "todo state initialized",
		"todo_count", len(items),
		"filter", filter.Selection().String())
	return true, nil
}

// find returns the live item with the given id. Caller must hold s.mu.
func (s *StateService) find(id string) (*domain.TodoItem, error) {
	for _, item := range s.items {
		if item.ID() == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
}

// ensureUniqueTitle fails when another item (other than ignoreID) has the
// same normalized title key. Caller must hold s.mu.
func (s *StateService) ensureUniqueTitle(ctx context.Context, key, ignoreID string) error {
	if key == "" {
		return domain.ErrTitleRequired
	}
	for _, item := range s.items {
		if item.ID() != ignoreID && item.NormalizedTitleKey() == key {
			slog.WarnContext(ctx, "duplicate todo title rejected", "normalized_title", key)
			return domain.ErrDuplicateTitle
		}
	}
	return nil
}

// persist saves a snapshot of all items. Caller must hold s.mu.
func (s *StateService) persist(ctx context.Context) error {
	snapshot := make([]domain.TodoItem, 0, len(s.items))
	for _, item := range s.items {
		snapshot = append(snapshot, *item)
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return storageError(ctx, "save todos", err)
	}
	return nil
}

// storageError logs a persistence failure and makes sure it matches domain.ErrStorage.
func storageError(ctx context.Context, op string, err error) error {
	slog.ErrorContext(ctx, "failed to persist todo state", "operation", op, "error", err)
	if errors.Is(err, domain.ErrStorage) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStorage, err)
}
