package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts"
)

// Health status values
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	sources   config.SourcesConfig
	analysis  *AnalysisService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual component health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, sources config.SourcesConfig, analysis *AnalysisService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		sources:   sources,
		analysis:  analysis,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports data readiness and source file availability. The
// overall status is degraded when any component is not ok.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
		},
		Services: map[string]ServiceHealth{
			"data":    hs.dataHealth(),
			"sources": hs.sourcesHealth(),
		},
	}

	for _, svc := range status.Services {
		if svc.Status != StatusOK {
			status.Status = StatusDegraded
		}
	}

	hs.logger.DebugContext(ctx, "Health check completed",
		slog.String("status", status.Status))
	return status
}

// ReadinessCheck reports whether compiled data can be served.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	data := hs.dataHealth()
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  map[string]ServiceHealth{"data": data},
	}
	if data.Status != StatusOK && data.Status != "stale" {
		status.Status = StatusNotReady
	}
	return status
}

// LivenessCheck reports that the process is serving requests.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// Version returns build information.
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) dataHealth() ServiceHealth {
	if hs.analysis == nil {
		return ServiceHealth{Status: "unavailable", Message: "analysis service not configured"}
	}
	st := hs.analysis.Status()
	switch {
	case !st.Ready && st.LastError != "":
		return ServiceHealth{Status: "unavailable", Message: st.LastError}
	case !st.Ready:
		return ServiceHealth{Status: "pending", Message: "no compiled data yet"}
	case st.LastError != "":
		return ServiceHealth{Status: "stale", Message: "last refresh failed: " + st.LastError,
			Uptime: time.Since(st.LastAttempt).Round(time.Second).String()}
	}
	return ServiceHealth{Status: StatusOK, Message: "run " + st.LastRunID}
}

func (hs *HealthService) sourcesHealth() ServiceHealth {
	var missing []string
	for _, path := range []string{
		hs.sources.EmploymentFile,
		hs.sources.SalaryFile,
		hs.sources.PopulationFile,
		hs.sources.HousingFile,
	} {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		msg := "missing: " + missing[0]
		if len(missing) > 1 {
			msg += " and others"
		}
		return ServiceHealth{Status: "unavailable", Message: msg}
	}
	return ServiceHealth{Status: StatusOK, Message: "4 source files present"}
}
