package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/services"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/shared/testutil"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts"
)

type stubRunner struct {
	res *pipeline.Result
	err error
}

func (s stubRunner) Run(context.Context) (*pipeline.Result, error) {
	return s.res, s.err
}

func newHealthHandler(t *testing.T, runner services.Runner, refresh bool) *HealthHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	analysis := services.NewAnalysisService(runner, 0, logger)
	if refresh {
		_, _ = analysis.Refresh(context.Background())
	}
	sources := testutil.WriteSources(t)
	return NewHealthHandler(services.NewHealthService(contracts.Version, sources, analysis, logger), logger)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) services.HealthStatus {
	t.Helper()
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return status
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		runner     services.Runner
		refresh    bool
		wantCode   int
		wantStatus string
	}{
		{"before first run", stubRunner{}, false, http.StatusServiceUnavailable, services.StatusNotReady},
		{"after failed run", stubRunner{err: errors.New("boom")}, true, http.StatusServiceUnavailable, services.StatusNotReady},
		{"after run", stubRunner{res: &pipeline.Result{RunID: "r1"}}, true, http.StatusOK, services.StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHealthHandler(t, tt.runner, tt.refresh)
			rec := httptest.NewRecorder()
			h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, decode(t, rec).Status)
		})
	}
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	h := newHealthHandler(t, stubRunner{res: &pipeline.Result{RunID: "r1"}}, true)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	status := decode(t, rec)
	assert.Equal(t, services.StatusOK, status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.Equal(t, services.StatusOK, status.Services["sources"].Status)
}

func TestHealthHandler_LivenessAndVersion(t *testing.T) {
	h := newHealthHandler(t, stubRunner{}, false)

	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	assert.Equal(t, services.StatusAlive, decode(t, rec).Status)

	rec = httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, contracts.Version, info.Version)
	assert.Equal(t, contracts.APIVersion, info.APIVersion)
}
