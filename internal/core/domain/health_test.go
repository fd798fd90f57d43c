package domain

import "testing"

func healthy() ComponentHealth { return ComponentHealth{Status: HealthStatusHealthy} }

func TestDetailedHealthResponse_OverallStatus(t *testing.T) {
	tests := []struct {
		name   string
		report DetailedHealthResponse
		want   HealthStatus
	}{
		{
			name: "all healthy",
			report: DetailedHealthResponse{
				Database: healthy(),
				Cache:    CacheHealth{ComponentHealth: healthy()},
				Backend:  healthy(),
				Catalogs: map[string]ComponentHealth{"google": healthy()},
			},
			want: HealthStatusHealthy,
		},
		{
			name: "database down",
			report: DetailedHealthResponse{
				Database: ComponentHealth{Status: HealthStatusUnhealthy},
				Cache:    CacheHealth{ComponentHealth: healthy()},
				Backend:  healthy(),
			},
			want: HealthStatusUnhealthy,
		},
		{
			name: "catalog down",
			report: DetailedHealthResponse{
				Database: healthy(),
				Cache:    CacheHealth{ComponentHealth: healthy()},
				Backend:  healthy(),
				Catalogs: map[string]ComponentHealth{"gutenberg": {Status: HealthStatusUnhealthy}},
			},
			want: HealthStatusDegraded,
		},
		{
			name: "backend down",
			report: DetailedHealthResponse{
				Database: healthy(),
				Cache:    CacheHealth{ComponentHealth: healthy()},
				Backend:  ComponentHealth{Status: HealthStatusUnhealthy},
			},
			want: HealthStatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.OverallStatus(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCacheStats_HitRate(t *testing.T) {
	if (CacheStats{}).HitRate() != 0 {
		t.Error("expected zero hit rate with no lookups")
	}
	if got := (CacheStats{Hits: 3, Misses: 1}).HitRate(); got != 0.75 {
		t.Errorf("expected 0.75, got %f", got)
	}
}
