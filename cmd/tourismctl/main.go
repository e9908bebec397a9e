package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ricky-kiva/andro-tourism-app/internal/app"
	"github.com/ricky-kiva/andro-tourism-app/internal/cli"
	"github.com/ricky-kiva/andro-tourism-app/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func open(ctx context.Context, log *slog.Logger) (*cli.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &cli.Session{
		Service:    a.Repository,
		Background: a.RunFeed,
		Close:      a.Close,
	}, nil
}
