package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"CafPlanner/internal/capacity"
	"CafPlanner/internal/config"
	"CafPlanner/internal/estimation"
	"CafPlanner/internal/graceful"
	"CafPlanner/internal/httpserver"
	"CafPlanner/internal/planning"
	"CafPlanner/internal/repositories"
	"CafPlanner/internal/scoring"
	"CafPlanner/internal/utils/logger/handlers/slogpretty"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var Version = "0.1"

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info(
		"starting caf planner",
		slog.String("env", cfg.Env),
		slog.String("version", Version),
	)

	repositoryService := repositories.New(log, cfg)
	estimationService := estimation.New(log, repositoryService)
	scoringService := scoring.New(log, repositoryService, estimationService)
	planningService := planning.New(log, repositoryService)
	capacityService := capacity.New(log, repositoryService)
	server := httpserver.New(log, cfg, capacityService, scoringService, planningService, estimationService)

	maxSecond := 15 * time.Second
	waitShutdown := graceful.GracefulShutdown(
		context.Background(),
		maxSecond,
		map[string]graceful.Operation{
			"Repository service": func(ctx context.Context) error {
				return repositoryService.Shutdown(ctx)
			},
			"HTTP server": func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		},
		log,
	)

	go server.Start()

	<-waitShutdown
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog(slog.LevelDebug)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = setupPrettySlog(slog.LevelInfo)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog(level slog.Level) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}
	handler := opts.NewPrettyHandler(os.Stdout)
	return slog.New(handler)
}
