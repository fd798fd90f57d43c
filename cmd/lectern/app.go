package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/lectern/internal/adapters/driven/ai"
	"github.com/custodia-labs/lectern/internal/adapters/driven/auth"
	"github.com/custodia-labs/lectern/internal/adapters/driven/catalogs/googlebooks"
	"github.com/custodia-labs/lectern/internal/adapters/driven/catalogs/gutenberg"
	"github.com/custodia-labs/lectern/internal/adapters/driven/catalogs/openlibrary"
	"github.com/custodia-labs/lectern/internal/adapters/driven/memory"
	"github.com/custodia-labs/lectern/internal/adapters/driven/postgres"
	postgresqueue "github.com/custodia-labs/lectern/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/custodia-labs/lectern/internal/adapters/driven/queue/redis"
	redisadapter "github.com/custodia-labs/lectern/internal/adapters/driven/redis"
	"github.com/custodia-labs/lectern/internal/adapters/driven/transport"
	"github.com/custodia-labs/lectern/internal/config"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/core/services"
	"github.com/custodia-labs/lectern/internal/normalisers"
	"github.com/custodia-labs/lectern/internal/runtime"
)

// app holds every wired component for one process
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	runtime  *runtime.Services
	catalogs []driven.CatalogSource
	cache    driven.Cache
	store    driven.SummaryStore // nil in CLI mode
	queue    driven.TaskQueue    // nil in CLI mode

	library   driving.LibraryService
	summaries driving.SummaryService
	jobs      driving.JobService
	admin     driving.AdminService
	health    driving.HealthService

	closers []func() error
}

// newLogger installs a JSON handler in production and a text handler otherwise
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Server.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func userAgent() string {
	return "lectern/" + version
}

// newApp wires adapters and services. CLI mode skips PostgreSQL, Redis and the queue.
func newApp(ctx context.Context, cfg *config.Config, mode config.Mode, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if mode != config.ModeCLI && cfg.Redis.URL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		a.closers = append(a.closers, redisClient.Close)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Println("Redis connected")
	}

	// ===== Cache (Redis if available, otherwise in-memory LRU) =====
	cacheBackend := "memory"
	if redisClient != nil {
		a.cache = redisadapter.NewCache(redisClient, "")
		cacheBackend = "redis"
	} else {
		a.cache = memory.NewCache(cfg.Cache.MaxCapacity, cfg.CacheTTL())
	}
	log.Printf("Using %s cache", cacheBackend)

	// ===== PostgreSQL =====
	var db *postgres.DB
	if mode != config.ModeCLI {
		log.Println("Connecting to PostgreSQL...")
		var err error
		db, err = postgres.Connect(ctx, postgres.DefaultConfig(cfg.Database.URL, cfg.Database.PoolSize))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.InitSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		log.Println("PostgreSQL connected and schema initialized")
		a.store = postgres.NewSummaryStore(db.DB)

		// ===== Task Queue (Redis if available, otherwise PostgreSQL) =====
		if redisClient != nil {
			q, err := redisqueue.NewQueue(redisClient)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("create task queue: %w", err)
			}
			a.queue = q
			log.Println("Using Redis task queue")
		} else {
			a.queue = postgresqueue.NewQueue(db.DB)
			log.Println("Using PostgreSQL task queue")
		}
	}

	// ===== Runtime and summarization backend =====
	a.runtime = runtime.NewServices(domain.NewRuntimeConfig(version, cacheBackend))
	a.closers = append(a.closers, a.runtime.Close)

	factory := ai.NewFactory(ai.FactoryConfig{Logger: logger})
	settings := cfg.BackendSettings()
	if backend, err := factory.Create(&settings); err != nil {
		logger.Warn("summarization backend not configured, summaries will be extractive",
			"provider", settings.Provider, "error", err)
	} else {
		a.runtime.SetBackend(settings.Provider, backend)
		logger.Info("summarization backend ready", "provider", settings.Provider, "model", backend.Model())
	}

	// ===== Catalogs =====
	catalogDoer := func(name string) driven.Doer {
		return transport.NewClient(transport.Config{
			Policy:        transport.CatalogPolicy,
			Timeout:       services.DefaultContentTimeout,
			UserAgent:     userAgent(),
			RatePerSecond: cfg.Catalogs.RateLimit,
			Logger:        logger.With("catalog", name),
		})
	}
	a.catalogs = []driven.CatalogSource{
		googlebooks.New(googlebooks.Config{
			BaseURL: cfg.Catalogs.GoogleBooksBaseURL,
			APIKey:  cfg.Catalogs.GoogleBooksAPIKey,
			Doer:    catalogDoer("google"),
		}),
		openlibrary.New(openlibrary.Config{
			BaseURL: cfg.Catalogs.OpenLibraryBaseURL,
			Doer:    catalogDoer("openlibrary"),
		}),
		gutenberg.New(gutenberg.Config{
			BaseURL: cfg.Catalogs.GutenbergBaseURL,
			Doer:    catalogDoer("gutenberg"),
			Logger:  logger,
		}),
	}

	// ===== Services =====
	registry := normalisers.DefaultRegistry()

	aggregator := services.NewAggregator(services.AggregatorConfig{
		Sources:       a.catalogs,
		SourceTimeout: cfg.SourceTimeout(),
		Logger:        logger,
	})

	a.library = services.NewLibraryService(services.LibraryServiceConfig{
		Aggregator: aggregator,
		Query:      services.NewQueryService(a.runtime, 0, logger),
		Cache:      a.cache,
		CacheTTL:   cfg.CacheTTL(),
		Logger:     logger,
	})

	orchestrator := services.NewSummaryOrchestrator(services.SummaryOrchestratorConfig{
		Services:       a.runtime,
		Registry:       registry,
		BackendTimeout: cfg.BackendTimeout(),
		Logger:         logger,
	})

	a.summaries = services.NewSummaryService(services.SummaryServiceConfig{
		Library:            a.library,
		Aggregator:         aggregator,
		Orchestrator:       orchestrator,
		Store:              a.store,
		Cache:              a.cache,
		CacheTTL:           cfg.CacheTTL(),
		Registry:           registry,
		SupportedLanguages: cfg.Summary.SupportedLanguages,
		Logger:             logger,
	})

	if a.queue != nil {
		a.jobs = services.NewJobService(a.queue, a.summaries, cfg.Summary.SupportedLanguages, logger)
	}

	a.admin = services.NewAdminService(
		auth.NewAdapter(cfg.Admin.JWTSecret),
		cfg.Admin.KeyHash,
		a.cache,
		a.runtime,
		factory,
		logger,
	)
	if cfg.Admin.KeyHash == "" {
		logger.Warn("ADMIN_KEY_HASH not set, admin endpoints are disabled")
	}

	a.health = services.NewHealthService(services.HealthServiceConfig{
		Services: a.runtime,
		Store:    a.store,
		Cache:    a.cache,
		Catalogs: a.catalogs,
		Logger:   logger,
	})

	log.Printf("Runtime config: cache=%s, backend=%s, languages=%s",
		cacheBackend, settings.Provider, strings.Join(cfg.Summary.SupportedLanguages, ","))

	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
