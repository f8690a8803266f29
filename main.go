package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/giygas/drug-interactions-api/commands"
	"github.com/giygas/drug-interactions-api/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := commands.New().Execute(ctx); err != nil {
		logging.Error("Command failed", "error", err)
		return 1
	}
	return 0
}
