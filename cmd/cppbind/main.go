package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/conduit-lang/cppbind/internal/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
