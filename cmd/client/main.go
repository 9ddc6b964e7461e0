// Command client is the interactive password-manager client: a local
// SQLite-backed store with optional write-through sync against a remote
// server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newguy103/passvault-client/internal/cli"
	"github.com/newguy103/passvault-client/internal/config"
	"github.com/newguy103/passvault-client/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	logger, closeLog := logging.Setup(cfg.ConfigDir, logging.ParseLevel(cfg.LogLevel))
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
