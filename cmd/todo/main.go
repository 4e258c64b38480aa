package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/rezkam/monodash/cmd/todo/commands"
)

var version = "dev"

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("todo"),
		kong.Description("Manage the monodash todo dashboard from the terminal."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, &cli, kctx); err != nil {
		fmt.Fprintf(os.Stderr, "todo: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cli *commands.CLI, kctx *kong.Context) error {
	g, err := cli.Open(ctx)
	if err != nil {
		return err
	}
	defer g.Close()

	return kctx.Run(g)
}
