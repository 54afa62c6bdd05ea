package main

import (
	"context"
	"dashboard/internal/app"
	"dashboard/internal/app/cli"
	"dashboard/internal/config"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	boot := func(ctx context.Context, configPath string) (*app.App, error) {
		cfg := config.GetConfig(configPath)
		log := setupSlog(cfg.Env)

		return app.New(ctx, cfg, log)
	}

	code := cli.New(boot, os.Stdout).Execute(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// setupSlog logs to stderr so command output on stdout stays plain JSON.
func setupSlog(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return log
}
