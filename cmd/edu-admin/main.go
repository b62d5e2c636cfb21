package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/noah-isme/edu-manager/internal/cli"
	"github.com/noah-isme/edu-manager/pkg/config"
	"github.com/noah-isme/edu-manager/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return cli.ExitBootstrap
	}

	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return cli.ExitBootstrap
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.New(cli.Options{
		Streams: cli.StdStreams(),
		Logger:  logr,
		Setup: func(ctx context.Context) (*cli.Runtime, error) {
			return cli.Connect(ctx, cfg, logr)
		},
		MetricsTextfile: cfg.Metrics.Textfile,
	})
	return app.Execute(ctx, os.Args[1:])
}
