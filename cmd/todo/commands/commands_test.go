package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rezkam/monodash/internal/application/todo"
	"github.com/rezkam/monodash/internal/domain"
	"github.com/rezkam/monodash/internal/infrastructure/persistence/kvstore"
	"github.com/rezkam/monodash/internal/storage/memory"
)

func newGlobal(t *testing.T) *Global {
	t.Helper()
	repo, err := kvstore.NewRepository(memory.NewStore())
	require.NoError(t, err)
	return &Global{
		Ctx: context.Background(),
		Svc: todo.NewStateService(repo, todo.Config{}),
		Out: &bytes.Buffer{},
	}
}

// exec parses args like the todo binary would and runs the selected command.
func exec(t *testing.T, g *Global, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("todo"),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
		kong.Vars{"version": "test"},
	)
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	buf := g.Out.(*bytes.Buffer)
	buf.Reset()
	err = kctx.Run(g)
	return buf.String(), err
}

func listJSON(t *testing.T, g *Global, args ...string) []todoView {
	t.Helper()
	out, err := exec(t, g, append([]string{"ls", "--format", "json"}, args...)...)
	require.NoError(t, err)
	var views []todoView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	return views
}

func TestAdd(t *testing.T) {
	g := newGlobal(t)

	out, err := exec(t, g, "add", "Buy milk", "--note", "2 liters", "--due", "2999-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, "added ")
	assert.Contains(t, out, "Buy milk")

	views := listJSON(t, g)
	require.Len(t, views, 1)
	assert.Equal(t, "Buy milk", views[0].Title)
	assert.Equal(t, "2 liters", views[0].Note)
	assert.Equal(t, "2999-01-02", views[0].DueDay)
	assert.False(t, views[0].Completed)
}

func TestAdd_Errors(t *testing.T) {
	g := newGlobal(t)
	_, err := exec(t, g, "add", "Buy milk")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"duplicate title", []string{"add", " buy  MILK "}, domain.ErrDuplicateTitle},
		{"blank title", []string{"add", "   "}, domain.ErrTitleRequired},
		{"title too long", []string{"add", strings.Repeat("x", domain.MaxTitleLength+1)}, domain.ErrTitleLength},
		{"invalid due day", []string{"add", "Read book", "--due", "tomorrow"}, domain.ErrInvalidDay},
		{"due day in the past", []string{"add", "Read book", "--due", "2001-01-01"}, domain.ErrDueDayInPast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exec(t, g, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, g.Svc.Items(), 1)
}

func TestEdit_KeepsUnsetFields(t *testing.T) {
	g := newGlobal(t)
	_, err := exec(t, g, "add", "Buy milk", "--note", "2 liters", "--due", "2999-01-02")
	require.NoError(t, err)
	id := g.Svc.Items()[0].ID()

	out, err := exec(t, g, "edit", id[:13], "--title", "Buy oat milk")
	require.NoError(t, err)
	assert.Contains(t, out, "updated "+id)

	item := g.Svc.Items()[0]
	assert.Equal(t, "Buy oat milk", item.Title())
	assert.Equal(t, "2 liters", item.Note())
	assert.Equal(t, "2999-01-02", item.DueDay().String())

	_, err = exec(t, g, "edit", id, "--clear-note", "--clear-due")
	require.NoError(t, err)
	item = g.Svc.Items()[0]
	assert.Equal(t, "Buy oat milk", item.Title())
	assert.Empty(t, item.Note())
	assert.True(t, item.DueDay().IsZero())
}

func TestToggleAndRemove(t *testing.T) {
	g := newGlobal(t)
	_, err := exec(t, g, "add", "Buy milk")
	require.NoError(t, err)
	id := g.Svc.Items()[0].ID()

	out, err := exec(t, g, "toggle", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is now completed")

	out, err = exec(t, g, "toggle", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is now active")

	out, err = exec(t, g, "rm", id)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+id+"\n", out)
	assert.Empty(t, g.Svc.Items())

	_, err = exec(t, g, "rm", id)
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestResolveID(t *testing.T) {
	g := newGlobal(t)
	_, err := exec(t, g, "add", "Buy milk")
	require.NoError(t, err)
	_, err = exec(t, g, "add", "Read book")
	require.NoError(t, err)
	items := g.Svc.Items()

	id, err := resolveID(g, items[1].ID())
	require.NoError(t, err)
	assert.Equal(t, items[1].ID(), id)

	_, err = resolveID(g, items[0].ID()[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = resolveID(g, "  ")
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)

	_, err = resolveID(g, "zzzz")
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestFilter(t *testing.T) {
	g := newGlobal(t)

	out, err := exec(t, g, "filter")
	require.NoError(t, err)
	assert.Equal(t, "All\n", out)

	_, err = exec(t, g, "add", "Buy milk")
	require.NoError(t, err)
	_, err = exec(t, g, "add", "Read book")
	require.NoError(t, err)
	_, err = exec(t, g, "toggle", g.Svc.Items()[1].ID())
	require.NoError(t, err)

	out, err = exec(t, g, "filter", "completed")
	require.NoError(t, err)
	assert.Equal(t, "filter set to Completed\n", out)

	views := listJSON(t, g)
	require.Len(t, views, 1)
	assert.Equal(t, "Read book", views[0].Title)
	assert.Len(t, listJSON(t, g, "--all"), 2)

	_, err = exec(t, g, "filter", "someday")
	require.ErrorIs(t, err, domain.ErrInvalidFilter)
	assert.Equal(t, domain.FilterCompleted, g.Svc.CurrentFilter().Selection())
}

func TestSummary(t *testing.T) {
	g := newGlobal(t)
	_, err := exec(t, g, "add", "Buy milk")
	require.NoError(t, err)
	_, err = exec(t, g, "add", "Read book")
	require.NoError(t, err)
	_, err = exec(t, g, "toggle", g.Svc.Items()[0].ID())
	require.NoError(t, err)

	out, err := exec(t, g, "summary")
	require.NoError(t, err)
	assert.Equal(t, "total 2  active 1  completed 1  filter All\n", out)

	out, err = exec(t, g, "summary", "-f", "yaml")
	require.NoError(t, err)
	var view summaryView
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	assert.Equal(t, summaryView{Total: 2, Active: 1, Completed: 1, Filter: "All"}, view)
}

func TestLs_Table(t *testing.T) {
	g := newGlobal(t)
	_, err := exec(t, g, "add", "Buy milk", "--due", "2999-01-02")
	require.NoError(t, err)

	out, err := exec(t, g, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "2999-01-02")
	assert.True(t, strings.HasSuffix(out, "1 shown · 1 active · 0 completed · filter All\n"))
}

func TestLs_EmptyJSON(t *testing.T) {
	g := newGlobal(t)
	out, err := exec(t, g, "ls", "-f", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestLs_RejectsUnknownFormat(t *testing.T) {
	g := newGlobal(t)
	_, err := exec(t, g, "ls", "--format", "xml")
	assert.Error(t, err)
}

func TestTui_RequiresApp(t *testing.T) {
	g := newGlobal(t)
	_, err := exec(t, g, "tui")
	assert.Error(t, err)
}
