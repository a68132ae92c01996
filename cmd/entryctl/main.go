// Package main is the entrypoint for the entryctl tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/entryd/entryd/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
