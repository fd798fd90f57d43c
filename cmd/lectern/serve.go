package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/lectern/internal/adapters/driving/http"
	"github.com/custodia-labs/lectern/internal/config"
	"github.com/custodia-labs/lectern/internal/worker"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, *configPath, true, false)
		},
	}
}

func newWorkerCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background summary worker only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, *configPath, false, true)
		},
	}
}

func newAllCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run the HTTP API and the worker in one process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, *configPath, true, true)
		},
	}
}

func serverMode(api, work bool) config.Mode {
	switch {
	case api && work:
		return config.ModeAll
	case api:
		return config.ModeServe
	default:
		return config.ModeWorker
	}
}

// runServer runs the API and/or worker until SIGINT or SIGTERM
func runServer(cmd *cobra.Command, configPath string, api, work bool) error {
	mode := serverMode(api, work)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(mode); err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	log.Printf("lectern %s starting in %s mode", version, mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, mode, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var w *worker.Worker
	if work {
		w = worker.NewWorker(worker.WorkerConfig{
			TaskQueue:   a.queue,
			Jobs:        a.jobs,
			Logger:      logger,
			Concurrency: cfg.Worker.Concurrency,
		})
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
		log.Printf("Worker started with concurrency %d", cfg.Worker.Concurrency)
	}

	if api {
		err = runAPI(ctx, a, cfg, logger)
	} else {
		<-ctx.Done()
	}

	if w != nil {
		log.Println("Stopping worker...")
		w.Stop()
		log.Println("Worker stopped")
	}
	return err
}

func runAPI(ctx context.Context, a *app, cfg *config.Config, logger *slog.Logger) error {
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Port = cfg.Server.Port
	serverCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	serverCfg.RateLimitRPS = cfg.Server.RateLimitRPS
	serverCfg.RateLimitBurst = cfg.Server.RateLimitBurst
	serverCfg.Logger = logger

	server := httpapi.NewServer(serverCfg, a.library, a.summaries, a.jobs, a.admin, a.health)

	log.Printf("API server starting on :%d", cfg.Server.Port)
	return server.Start(ctx)
}
