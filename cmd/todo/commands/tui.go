package commands

import (
	"errors"

	"github.com/rezkam/monodash/internal/tui"
)

// TuiCmd implements the 'tui' command.
type TuiCmd struct{}

// Run executes the tui command. External changes to fs storage are picked
// up while the dashboard is open.
func (c *TuiCmd) Run(g *Global) error {
	if g.App == nil {
		return errors.New("the dashboard needs a storage backend")
	}

	go func() {
		_ = g.App.Watch(g.Ctx)
	}()
	return tui.Run(g.Ctx, g.App.Service)
}
