package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
