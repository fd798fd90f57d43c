package domain

// HealthStatus is the overall or per-component health
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the simple liveness report
type HealthResponse struct {
	Status        HealthStatus `json:"status"`
	Version       string       `json:"version"`
	UptimeSeconds int64        `json:"uptime_seconds"`
}

// ComponentHealth is the result of probing one dependency
type ComponentHealth struct {
	Status         HealthStatus `json:"status"`
	ResponseTimeMs int64        `json:"response_time_ms"`
	Error          string       `json:"error,omitempty"`
}

// CacheHealth adds cache statistics to a component report
type CacheHealth struct {
	ComponentHealth
	Backend string  `json:"backend"`
	Entries int64   `json:"entries"`
	HitRate float64 `json:"hit_rate"`
}

// CacheStats reports cache size and effectiveness
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// HitRate returns hits / (hits + misses), or 0 with no lookups
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// DetailedHealthResponse is the full dependency report
type DetailedHealthResponse struct {
	Status        HealthStatus               `json:"status"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Database      ComponentHealth            `json:"database"`
	Cache         CacheHealth                `json:"cache"`
	Backend       ComponentHealth            `json:"backend"`
	Catalogs      map[string]ComponentHealth `json:"catalogs"`
}

// OverallStatus derives the report status. The database and cache are
// required; a failing backend or catalog only degrades the service.
func (r *DetailedHealthResponse) OverallStatus() HealthStatus {
	if r.Database.Status == HealthStatusUnhealthy || r.Cache.Status == HealthStatusUnhealthy {
		return HealthStatusUnhealthy
	}
	if r.Backend.Status != HealthStatusHealthy {
		return HealthStatusDegraded
	}
	for _, c := range r.Catalogs {
		if c.Status != HealthStatusHealthy {
			return HealthStatusDegraded
		}
	}
	return HealthStatusHealthy
}
