package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dsmmcken/bnetdata/internal/cmd"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		return cmd.ReportError(os.Stderr, err)
	}
	return 0
}
