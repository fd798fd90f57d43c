package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/runtime"
)

// Ensure healthService implements HealthService
var _ driving.HealthService = (*healthService)(nil)

// DefaultProbeTimeout bounds each dependency probe
const DefaultProbeTimeout = 5 * time.Second

var errNotConfigured = errors.New("not configured")

// HealthServiceConfig holds the dependencies the detailed report probes
type HealthServiceConfig struct {
	Services     *runtime.Services
	Store        driven.SummaryStore
	Cache        driven.Cache
	Catalogs     []driven.CatalogSource
	ProbeTimeout time.Duration
	Logger       *slog.Logger
}

type healthService struct {
	services     *runtime.Services
	store        driven.SummaryStore
	cache        driven.Cache
	catalogs     []driven.CatalogSource
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewHealthService creates a new HealthService
func NewHealthService(cfg HealthServiceConfig) driving.HealthService {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &healthService{
		services:     cfg.Services,
		store:        cfg.Store,
		cache:        cfg.Cache,
		catalogs:     cfg.Catalogs,
		probeTimeout: cfg.ProbeTimeout,
		logger:       cfg.Logger,
	}
}

// Health reports liveness without touching dependencies
func (s *healthService) Health(ctx context.Context) *domain.HealthResponse {
	cfg := s.services.Config()
	return &domain.HealthResponse{
		Status:        domain.HealthStatusHealthy,
		Version:       cfg.Version,
		UptimeSeconds: cfg.UptimeSeconds(),
	}
}

// Detailed probes every dependency concurrently
func (s *healthService) Detailed(ctx context.Context) *domain.DetailedHealthResponse {
	cfg := s.services.Config()
	resp := &domain.DetailedHealthResponse{
		Version:       cfg.Version,
		UptimeSeconds: cfg.UptimeSeconds(),
		Catalogs:      make(map[string]domain.ComponentHealth, len(s.catalogs)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	wg.Add(3 + len(s.catalogs))

	go func() {
		defer wg.Done()
		resp.Database = s.probe(ctx, "database", func(ctx context.Context) error {
			if s.store == nil {
				return errNotConfigured
			}
			return s.store.Ping(ctx)
		})
	}()

	go func() {
		defer wg.Done()
		resp.Cache = s.cacheHealth(ctx, cfg.CacheBackend)
	}()

	go func() {
		defer wg.Done()
		resp.Backend = s.probe(ctx, "backend", func(ctx context.Context) error {
			backend := s.services.Backend()
			if backend == nil {
				return errNotConfigured
			}
			return backend.Ping(ctx)
		})
	}()

	for _, src := range s.catalogs {
		go func() {
			defer wg.Done()
			h := s.probe(ctx, string(src.Source()), func(ctx context.Context) error {
				return pingCatalog(ctx, src)
			})
			mu.Lock()
			resp.Catalogs[string(src.Source())] = h
			mu.Unlock()
		}()
	}

	wg.Wait()

	resp.Status = resp.OverallStatus()
	return resp
}

func (s *healthService) cacheHealth(ctx context.Context, backend string) domain.CacheHealth {
	h := domain.CacheHealth{Backend: backend}
	h.ComponentHealth = s.probe(ctx, "cache", func(ctx context.Context) error {
		if s.cache == nil {
			return errNotConfigured
		}
		return s.cache.Ping(ctx)
	})
	if h.Status != domain.HealthStatusHealthy {
		return h
	}

	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		s.logger.Warn("cache stats unavailable", "error", err)
		return h
	}
	h.Entries = stats.Entries
	h.HitRate = stats.HitRate()
	return h
}

// probe times fn under the probe timeout
func (s *healthService) probe(ctx context.Context, name string, fn func(context.Context) error) domain.ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	h := domain.ComponentHealth{
		Status:         domain.HealthStatusHealthy,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		h.Status = domain.HealthStatusUnhealthy
		h.Error = err.Error()
		s.logger.Warn("health probe failed", "component", name, "error", err)
	}
	return h
}

type catalogPinger interface {
	Ping(ctx context.Context) error
}

// pingCatalog uses the catalog's own Ping when it has one, else a tiny search
func pingCatalog(ctx context.Context, src driven.CatalogSource) error {
	if p, ok := src.(catalogPinger); ok {
		return p.Ping(ctx)
	}
	_, err := src.Search(ctx, "test", 1)
	return err
}
