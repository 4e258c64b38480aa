package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/rezkam/monodash/internal/domain"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

type todoView struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"`
	Completed bool      `json:"isCompleted" yaml:"completed"`
	DueDay    string    `json:"dueDay,omitempty" yaml:"dueDay,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type summaryView struct {
	Total     int    `json:"total" yaml:"total"`
	Active    int    `json:"active" yaml:"active"`
	Completed int    `json:"completed" yaml:"completed"`
	Filter    string `json:"filter" yaml:"filter"`
}

func toView(item domain.TodoItem) todoView {
	v := todoView{
		ID:        item.ID(),
		Title:     item.Title(),
		Note:      item.Note(),
		Completed: item.IsCompleted(),
		CreatedAt: item.CreatedAt(),
		UpdatedAt: item.UpdatedAt(),
	}
	if !item.DueDay().IsZero() {
		v.DueDay = item.DueDay().String()
	}
	return v
}

func toSummaryView(s domain.DashboardSummary) summaryView {
	return summaryView{Total: s.Total, Active: s.Active, Completed: s.Completed, Filter: s.Filter.String()}
}

// LsCmd implements the 'ls' command.
type LsCmd struct {
	Format string `short:"f" default:"table" help:"Output format (table, json or yaml)" enum:"table,json,yaml"`
	All    bool   `short:"a" help:"Ignore the current filter"`
}

// Run executes the ls command.
func (c *LsCmd) Run(g *Global) error {
	if err := g.Svc.Initialize(g.Ctx); err != nil {
		return err
	}
	items := g.Svc.FilteredItems()
	if c.All {
		items = g.Svc.Items()
	}

	views := make([]todoView, 0, len(items))
	for _, item := range items {
		views = append(views, toView(item))
	}

	switch c.Format {
	case formatJSON:
		return writeJSON(g.Out, views)
	case formatYAML:
		return writeYAML(g.Out, views)
	default:
		return writeTable(g.Out, views, g.Svc.Summary())
	}
}

// SummaryCmd implements the 'summary' command.
type SummaryCmd struct {
	Format string `short:"f" default:"table" help:"Output format (table, json or yaml)" enum:"table,json,yaml"`
}

// Run executes the summary command.
func (c *SummaryCmd) Run(g *Global) error {
	if err := g.Svc.Initialize(g.Ctx); err != nil {
		return err
	}
	view := toSummaryView(g.Svc.Summary())

	switch c.Format {
	case formatJSON:
		return writeJSON(g.Out, view)
	case formatYAML:
		return writeYAML(g.Out, view)
	default:
		_, err := fmt.Fprintf(g.Out, "total %d  active %d  completed %d  filter %s\n",
			view.Total, view.Active, view.Completed, view.Filter)
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func writeTable(w io.Writer, views []todoView, summary domain.DashboardSummary) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DONE", "TITLE", "DUE", "NOTE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, v := range views {
		done := " "
		if v.Completed {
			done = "x"
		}
		t.Row(v.ID, done, v.Title, v.DueDay, v.Note)
	}

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d shown · %d active · %d completed · filter %s\n",
		len(views), summary.Active, summary.Completed, summary.Filter)
	return err
}
