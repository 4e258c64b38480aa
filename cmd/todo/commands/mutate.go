package commands

import (
	"fmt"

	"github.com/rezkam/monodash/internal/domain"
)

// AddCmd implements the 'add' command.
type AddCmd struct {
	Title string `arg:"" help:"Todo title"`
	Note  string `short:"n" help:"Optional note"`
	Due   string `short:"d" help:"Optional due day (YYYY-MM-DD)"`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Global) error {
	due, err := domain.ParseDay(c.Due)
	if err != nil {
		return err
	}
	item, err := g.Svc.AddTodo(g.Ctx, c.Title, c.Note, due)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "added %s  %s\n", item.ID(), item.Title())
	return nil
}

// EditCmd implements the 'edit' command. Fields that are not given keep
// their current value.
type EditCmd struct {
	ID        string `arg:"" help:"Todo id or unique id prefix"`
	Title     string `short:"t" help:"New title"`
	Note      string `short:"n" help:"New note"`
	Due       string `short:"d" help:"New due day (YYYY-MM-DD)"`
	ClearNote bool   `help:"Remove the note"`
	ClearDue  bool   `help:"Remove the due day"`
}

// Run executes the edit command.
func (c *EditCmd) Run(g *Global) error {
	id, err := resolveID(g, c.ID)
	if err != nil {
		return err
	}
	current, ok := findItem(g, id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
	}

	title := current.Title()
	if c.Title != "" {
		title = c.Title
	}
	note := current.Note()
	switch {
	case c.ClearNote:
		note = ""
	case c.Note != "":
		note = c.Note
	}
	due := current.DueDay()
	switch {
	case c.ClearDue:
		due = domain.Day{}
	case c.Due != "":
		if due, err = domain.ParseDay(c.Due); err != nil {
			return err
		}
	}

	item, err := g.Svc.UpdateTodo(g.Ctx, id, title, note, due)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "updated %s  %s\n", item.ID(), item.Title())
	return nil
}

// ToggleCmd implements the 'toggle' command.
type ToggleCmd struct {
	ID string `arg:"" help:"Todo id or unique id prefix"`
}

// Run executes the toggle command.
func (c *ToggleCmd) Run(g *Global) error {
	id, err := resolveID(g, c.ID)
	if err != nil {
		return err
	}
	item, err := g.Svc.ToggleTodo(g.Ctx, id)
	if err != nil {
		return err
	}
	state := "active"
	if item.IsCompleted() {
		state = "completed"
	}
	fmt.Fprintf(g.Out, "%s  %s is now %s\n", item.ID(), item.Title(), state)
	return nil
}

// RmCmd implements the 'rm' command.
type RmCmd struct {
	ID string `arg:"" help:"Todo id or unique id prefix"`
}

// Run executes the rm command.
func (c *RmCmd) Run(g *Global) error {
	id, err := resolveID(g, c.ID)
	if err != nil {
		return err
	}
	if err := g.Svc.DeleteTodo(g.Ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "deleted %s\n", id)
	return nil
}
