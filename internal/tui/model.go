// Package tui is the terminal dashboard. It drives the todo state service
// and re-renders whenever the service reports a state change.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rezkam/monodash/internal/application/todo"
	"github.com/rezkam/monodash/internal/domain"
)

// Service is the state service surface the dashboard needs.
type Service interface {
	Initialize(ctx context.Context) error
	Reload(ctx context.Context) error
	AddTodo(ctx context.Context, title, note string, dueDay domain.Day) (domain.TodoItem, error)
	UpdateTodo(ctx context.Context, id, title, note string, dueDay domain.Day) (domain.TodoItem, error)
	ToggleTodo(ctx context.Context, id string) (domain.TodoItem, error)
	DeleteTodo(ctx context.Context, id string) error
	SetFilter(ctx context.Context, selection domain.FilterSelection) error
	Subscribe(l todo.Listener) (unsubscribe func())

	State() todo.Snapshot
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
)

const (
	fieldTitle = iota
	fieldNote
	fieldDue
)

// stateChangedMsg is delivered once per coalesced service notification.
type stateChangedMsg struct{}

// resultMsg carries the outcome of a service command.
type resultMsg struct {
	action string
	err    error
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx     context.Context
	svc     Service
	changes <-chan struct{}
	keys    keyMap
	help    help.Model

	items   []domain.TodoItem
	summary domain.DashboardSummary
	filter  domain.FilterSelection
	cursor  int

	mode   mode
	editID string
	inputs []textinput.Model
	focus  int

	status string
	err    error
}

// New creates a dashboard model. changes receives a value after every state
// change; see Watch.
func New(ctx context.Context, svc Service, changes <-chan struct{}) Model {
	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		inputs[i] = ti
	}
	inputs[fieldTitle].Placeholder = "Title"
	inputs[fieldTitle].CharLimit = domain.MaxTitleLength * 2
	inputs[fieldNote].Placeholder = "Note (optional)"
	inputs[fieldNote].CharLimit = domain.MaxNoteLength * 2
	inputs[fieldDue].Placeholder = "Due day YYYY-MM-DD (optional)"
	inputs[fieldDue].CharLimit = len(domain.DayLayout)

	return Model{
		ctx:     ctx,
		svc:     svc,
		changes: changes,
		keys:    defaultKeyMap(),
		help:    help.New(),
		inputs:  inputs,
	}
}

// Watch subscribes to svc and returns a channel that holds at most one
// pending change signal, plus the unsubscribe function.
func Watch(svc Service) (<-chan struct{}, func()) {
	changes := make(chan struct{}, 1)
	unsubscribe := svc.Subscribe(func(context.Context) error {
		select {
		case changes <- struct{}{}:
		default:
		}
		return nil
	})
	return changes, unsubscribe
}

// Run starts the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, svc Service) error {
	changes, unsubscribe := Watch(svc)
	defer unsubscribe()

	program := tea.NewProgram(New(ctx, svc, changes), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initialize(), waitForChange(m.changes))
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

func (m Model) initialize() tea.Cmd {
	return m.command("loaded", m.svc.Initialize)
}

// command runs fn off the event loop and reports its outcome.
func (m Model) command(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{action: action, err: fn(ctx)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case resultMsg:
		return m.handleResult(msg), nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) handleResult(msg resultMsg) Model {
	m.refresh()
	if msg.err != nil {
		m.err = msg.err
		m.status = ""
		// The mutation is kept in memory when only saving failed.
		if m.mode != modeBrowse && errors.Is(msg.err, domain.ErrStorage) {
			m.closeForm()
		}
		return m
	}
	m.err = nil
	m.status = msg.action
	if m.mode != modeBrowse {
		m.closeForm()
	}
	return m
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, hasSelection := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if hasSelection {
			id := selected.ID()
			return m, m.command("toggled", func(ctx context.Context) error {
				_, err := m.svc.ToggleTodo(ctx, id)
				return err
			})
		}
	case key.Matches(msg, m.keys.Delete):
		if hasSelection {
			id := selected.ID()
			return m, m.command("deleted", func(ctx context.Context) error {
				return m.svc.DeleteTodo(ctx, id)
			})
		}
	case key.Matches(msg, m.keys.Add):
		m.openForm(modeAdd, nil)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Edit):
		if hasSelection {
			m.openForm(modeEdit, &selected)
			return m, textinput.Blink
		}
	case key.Matches(msg, m.keys.Filter):
		next := nextSelection(m.filter)
		return m, m.command("filter "+next.String(), func(ctx context.Context) error {
			return m.svc.SetFilter(ctx, next)
		})
	case key.Matches(msg, m.keys.Reload):
		return m, m.command("reloaded", m.svc.Reload)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeForm()
		m.err = nil
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, nil
	case tea.KeyEnter:
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title := m.inputs[fieldTitle].Value()
	note := m.inputs[fieldNote].Value()
	due, err := domain.ParseDay(strings.TrimSpace(m.inputs[fieldDue].Value()))
	if err != nil {
		m.err = err
		return m, nil
	}

	if m.mode == modeEdit {
		id := m.editID
		return m, m.command("updated", func(ctx context.Context) error {
			_, err := m.svc.UpdateTodo(ctx, id, title, note, due)
			return err
		})
	}
	return m, m.command("added", func(ctx context.Context) error {
		_, err := m.svc.AddTodo(ctx, title, note, due)
		return err
	})
}

func (m *Model) openForm(md mode, item *domain.TodoItem) {
	m.mode = md
	m.editID = ""
	m.err = nil
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	if item != nil {
		m.editID = item.ID()
		m.inputs[fieldTitle].SetValue(item.Title())
		m.inputs[fieldNote].SetValue(item.Note())
		if !item.DueDay().IsZero() {
			m.inputs[fieldDue].SetValue(item.DueDay().String())
		}
	}
	m.setFocus(fieldTitle)
}

func (m *Model) closeForm() {
	m.mode = modeBrowse
	m.editID = ""
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
			m.inputs[j].CursorEnd()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// refresh copies the current service state into the model.
func (m *Model) refresh() {
	state := m.svc.State()
	m.items = state.Filtered
	m.summary = state.Summary
	m.filter = state.Filter.Selection()
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (domain.TodoItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return domain.TodoItem{}, false
	}
	return m.items[m.cursor], true
}

func nextSelection(s domain.FilterSelection) domain.FilterSelection {
	switch s {
	case domain.FilterAll:
		return domain.FilterActive
	case domain.FilterActive:
		return domain.FilterCompleted
	default:
		return domain.FilterAll
	}
}
