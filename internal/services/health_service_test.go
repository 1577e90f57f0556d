package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/shared/testutil"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts"
)

func TestHealthCheckPendingData(t *testing.T) {
	sources := testutil.WriteSources(t)
	hs := NewHealthService("1.0.0", sources, NewAnalysisService(new(MockRunner), 0, discardLogger()), discardLogger())

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, StatusDegraded, status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, "pending", status.Services["data"].Status)
	assert.Equal(t, StatusOK, status.Services["sources"].Status)
	assert.Contains(t, status.Runtime, "go_version")

	assert.Equal(t, StatusNotReady, hs.ReadinessCheck(context.Background()).Status)
}

func TestHealthCheckReady(t *testing.T) {
	sources := testutil.WriteSources(t)
	runner := new(MockRunner)
	runner.On("Run", mock.Anything).Return(&pipeline.Result{RunID: "abc"}, nil)
	svc := NewAnalysisService(runner, 0, discardLogger())
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	status := NewHealthService("1.0.0", sources, svc, discardLogger()).HealthCheck(context.Background())
	assert.Equal(t, StatusOK, status.Status)
	assert.Equal(t, "run abc", status.Services["data"].Message)

	ready := NewHealthService("1.0.0", sources, svc, discardLogger()).ReadinessCheck(context.Background())
	assert.Equal(t, StatusReady, ready.Status)
}

func TestHealthCheckMissingSource(t *testing.T) {
	sources := testutil.WriteSources(t)
	require.NoError(t, os.Remove(sources.HousingFile))

	runner := new(MockRunner)
	runner.On("Run", mock.Anything).Return(nil, errors.New("open housing: no such file"))
	svc := NewAnalysisService(runner, 0, discardLogger())
	_, err := svc.Refresh(context.Background())
	require.Error(t, err)

	status := NewHealthService("1.0.0", sources, svc, discardLogger()).HealthCheck(context.Background())
	assert.Equal(t, StatusDegraded, status.Status)
	assert.Equal(t, "unavailable", status.Services["data"].Status)
	assert.Equal(t, "unavailable", status.Services["sources"].Status)
	assert.Contains(t, status.Services["sources"].Message, sources.HousingFile)
}

func TestLivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.0.0", testutil.WriteSources(t), nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, live.Status)
	assert.Equal(t, contracts.Version, hs.Version().Version)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "unavailable", status.Services["data"].Status)
}
