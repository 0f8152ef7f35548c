// Command probe exercises a running gigmatch server end to end.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/gigmatch/internal/probe"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := probe.NewCommand().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}
