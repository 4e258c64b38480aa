package tui

import (
	"fmt"
	"strings"

	"github.com/rezkam/monodash/internal/domain"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	m.writeHeader(&b)
	b.WriteString("\n\n")
	m.writeItems(&b)

	if m.mode != modeBrowse {
		b.WriteString("\n")
		b.WriteString(m.formView())
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("✖ " + m.err.Error()))
	case m.status != "":
		b.WriteString(successStyle.Render("✔ " + m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return panelStyle.Render(b.String())
}

func (m Model) writeHeader(b *strings.Builder) {
	fmt.Fprintf(b, "%s   %s %d  %s %d  %s %d\n",
		titleStyle.Render("Todos"),
		pendingStyle.Render("•"), m.summary.Active,
		successStyle.Render("✔"), m.summary.Completed,
		accentStyle.Render("Total"), m.summary.Total,
	)

	tabs := make([]string, 0, 3)
	for _, s := range []domain.FilterSelection{domain.FilterAll, domain.FilterActive, domain.FilterCompleted} {
		if s == m.filter {
			tabs = append(tabs, activeTab.Render(s.String()))
		} else {
			tabs = append(tabs, mutedStyle.Render(s.String()))
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
}

func (m Model) writeItems(b *strings.Builder) {
	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("Nothing here. Press a to add a todo."))
		b.WriteString("\n")
		return
	}
	for i, item := range m.items {
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render(">") + " "
		}
		b.WriteString(prefix + renderItem(item) + "\n")
	}
}

func renderItem(item domain.TodoItem) string {
	box := mutedStyle.Render(boxUnchecked)
	title := item.Title()
	if item.IsCompleted() {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}

	line := box + " " + title
	if due := item.DueDay(); !due.IsZero() {
		line += " " + accentStyle.Render("due "+due.String())
	}
	if note := item.Note(); note != "" {
		line += " " + mutedStyle.Render("· "+note)
	}
	return line
}

func (m Model) formView() string {
	heading := "Add todo"
	if m.mode == modeEdit {
		heading = "Edit todo"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(heading))
	for _, in := range m.inputs {
		b.WriteString("\n")
		b.WriteString(in.View())
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("tab next field · enter save · esc cancel"))
	return panelStyle.Render(b.String())
}
