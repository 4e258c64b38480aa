package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/rezkam/monodash/internal/bootstrap"
	"github.com/rezkam/monodash/internal/config"
	"github.com/rezkam/monodash/internal/domain"
	"github.com/rezkam/monodash/internal/infrastructure/observability"
)

// Service is the state service surface the commands drive.
type Service interface {
	Initialize(ctx context.Context) error
	AddTodo(ctx context.Context, title, note string, dueDay domain.Day) (domain.TodoItem, error)
	UpdateTodo(ctx context.Context, id, title, note string, dueDay domain.Day) (domain.TodoItem, error)
	ToggleTodo(ctx context.Context, id string) (domain.TodoItem, error)
	DeleteTodo(ctx context.Context, id string) error
	SetFilter(ctx context.Context, selection domain.FilterSelection) error

	Items() []domain.TodoItem
	FilteredItems() []domain.TodoItem
	CurrentFilter() domain.TodoFilter
	Summary() domain.DashboardSummary
}

// Global carries the state shared by every command.
type Global struct {
	Ctx context.Context
	Svc Service
	Out io.Writer

	// App is set when the commands run against real storage. The tui
	// command needs it for change subscriptions.
	App *bootstrap.App
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Backend string           `help:"Storage backend override (fs, memory, sqlite, postgres, gcs, nats)" env:"MONODASH_STORAGE_BACKEND"`
	Dir     string           `help:"Data directory for the fs backend" env:"MONODASH_FS_DIR"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Add     AddCmd     `cmd:"" help:"Add a todo"`
	Edit    EditCmd    `cmd:"" help:"Edit title, note or due day of a todo"`
	Toggle  ToggleCmd  `cmd:"" help:"Mark a todo done or not done"`
	Rm      RmCmd      `cmd:"" help:"Delete a todo"`
	Ls      LsCmd      `cmd:"" help:"List todos"`
	Filter  FilterCmd  `cmd:"" help:"Show or change the dashboard filter"`
	Summary SummaryCmd `cmd:"" help:"Show dashboard counts"`
	Tui     TuiCmd     `cmd:"" help:"Open the interactive dashboard"`
}

// AfterApply runs after flag parsing; setup logging once.
// Logs go to stderr so command output stays machine readable.
func (c *CLI) AfterApply() error {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewTextLogger(os.Stderr, level))
	return nil
}

// Open loads configuration, applies flag overrides and wires the service.
func (c *CLI) Open(ctx context.Context) (*Global, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.Backend != "" {
		cfg.Storage.Backend = c.Backend
	}
	if c.Dir != "" {
		cfg.Storage.FSDir = c.Dir
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Notify: true})
	if err != nil {
		return nil, err
	}
	return &Global{Ctx: ctx, Svc: app.Service, Out: os.Stdout, App: app}, nil
}

// Close releases storage and publisher connections.
func (g *Global) Close() error {
	if g.App == nil {
		return nil
	}
	return g.App.Close()
}

// resolveID returns the id of the only item whose id starts with prefix.
func resolveID(g *Global, prefix string) (string, error) {
	if err := g.Svc.Initialize(g.Ctx); err != nil {
		return "", err
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", domain.ErrTodoNotFound)
	}

	var matches []string
	for _, item := range g.Svc.Items() {
		if item.ID() == prefix {
			return prefix, nil
		}
		if strings.HasPrefix(item.ID(), prefix) {
			matches = append(matches, item.ID())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", domain.ErrTodoNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func findItem(g *Global, id string) (domain.TodoItem, bool) {
	for _, item := range g.Svc.Items() {
		if item.ID() == id {
			return item, true
		}
	}
	return domain.TodoItem{}, false
}
