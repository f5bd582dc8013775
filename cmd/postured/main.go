package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"postured/internal/cli"
)

func main() {
	// Ctrl+C / SIGTERM end the stream with a final status line and exit 0.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.MainWithArgs(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
