package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/tripti/internal/buildinfo"
	"github.com/dmitrijs2005/tripti/internal/cli"
	"github.com/dmitrijs2005/tripti/internal/config"
	"github.com/dmitrijs2005/tripti/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, closer, err := cli.Build(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	// The REPL blocks on stdin, so a signal closes storage and exits here.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
		_ = closer.Close()
		fmt.Println("\nBye!")
		os.Exit(0)
	}()

	app.Run(ctx)

	if err := closer.Close(); err != nil {
		logger.Error(ctx, "closing storage", "error", err)
	}
}
