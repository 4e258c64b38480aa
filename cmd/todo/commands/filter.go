package commands

import (
	"fmt"

	"github.com/rezkam/monodash/internal/domain"
)

// FilterCmd implements the 'filter' command. Without an argument it prints
// the current selection.
type FilterCmd struct {
	Selection string `arg:"" optional:"" help:"All, Active or Completed (case-insensitive)"`
}

// Run executes the filter command.
func (c *FilterCmd) Run(g *Global) error {
	if c.Selection == "" {
		if err := g.Svc.Initialize(g.Ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(g.Out, g.Svc.CurrentFilter().Selection())
		return err
	}

	selection, ok := domain.ParseFilterSelection(c.Selection)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidFilter, c.Selection)
	}
	if err := g.Svc.SetFilter(g.Ctx, selection); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.Out, "filter set to %s\n", g.Svc.CurrentFilter().Selection())
	return err
}
