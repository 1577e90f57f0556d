package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/shared/testutil"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func compiledService(t *testing.T) *AnalysisService {
	t.Helper()
	p := pipeline.New(testutil.WriteSources(t),
		config.AnalysisConfig{StartYear: 2015, EndYear: 2016},
		pipeline.WithLogger(discardLogger()))
	svc := NewAnalysisService(p, time.Minute, discardLogger())
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	return svc
}

func TestAnalysisServiceNotReady(t *testing.T) {
	svc := NewAnalysisService(new(MockRunner), 0, discardLogger())

	_, err := svc.Summary()
	assert.ErrorIs(t, err, ErrDataNotReady)
	_, err = svc.Cities()
	assert.ErrorIs(t, err, ErrDataNotReady)
	_, err = svc.Records("")
	assert.ErrorIs(t, err, ErrDataNotReady)
	_, err = svc.Growth("")
	assert.ErrorIs(t, err, ErrDataNotReady)
	_, err = svc.CAGR(2015, 2016)
	assert.ErrorIs(t, err, ErrDataNotReady)

	st := svc.Status()
	assert.False(t, st.Ready)
	assert.Empty(t, st.LastError)
}

func TestAnalysisServiceQueries(t *testing.T) {
	svc := compiledService(t)

	cities, err := svc.Cities()
	require.NoError(t, err)
	assert.Equal(t, []string{"Ciudad de México", "León"}, cities)

	all, err := svc.Records("")
	require.NoError(t, err)
	assert.Len(t, all, 16)

	leon, err := svc.Records("León")
	require.NoError(t, err)
	require.Len(t, leon, 8)
	for _, r := range leon {
		assert.Equal(t, "León", r.City)
	}

	_, err = svc.Records("Monterrey")
	assert.ErrorIs(t, err, ErrCityNotFound)

	growthRows, err := svc.Growth("Ciudad de México")
	require.NoError(t, err)
	require.Len(t, growthRows, 1)
	assert.Equal(t, 2016, growthRows[0].Year)

	_, err = svc.Growth("Monterrey")
	assert.ErrorIs(t, err, ErrCityNotFound)

	summary, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalCities)
	assert.Equal(t, 16, summary.TotalDataPoints)
	assert.Equal(t, 2015, summary.CAGRStart)
	assert.Equal(t, 2016, summary.CAGREnd)
	assert.Equal(t, 2, summary.GrowthRows)
	assert.Len(t, summary.Stages, 4)
	assert.NotEmpty(t, summary.RunID)
}

func TestAnalysisServiceCAGRWindow(t *testing.T) {
	svc := compiledService(t)

	configured, err := svc.CAGR(2015, 2016)
	require.NoError(t, err)
	require.Len(t, configured, 2)
	assert.Equal(t, 1, configured[0].Span)

	wide, err := svc.CAGR(2010, 2020)
	require.NoError(t, err)
	require.Len(t, wide, 2)
	for _, row := range wide {
		assert.Equal(t, 10, row.Span)
		assert.Equal(t, 2015, row.FirstYear)
		assert.Equal(t, 2016, row.LastYear)
	}

	single, err := svc.CAGR(2016, 2016)
	require.NoError(t, err)
	assert.Empty(t, single, "one in-window year per city is not enough")
}

func TestAnalysisServiceFailedRefreshKeepsData(t *testing.T) {
	runner := new(MockRunner)
	first := &pipeline.Result{
		RunID: "run-1",
		Records: []domain.UnifiedRecord{
			{City: "Mérida", Year: 2020, Quarter: 1, TimePoint: domain.TimePoint("2020Q1")},
		},
	}
	boom := errors.New("source gone")
	runner.On("Run", mock.Anything).Return(first, nil).Once()
	runner.On("Run", mock.Anything).Return(nil, boom).Once()

	svc := NewAnalysisService(runner, time.Second, discardLogger())

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)

	cities, err := svc.Cities()
	require.NoError(t, err)
	assert.Equal(t, []string{"Mérida"}, cities)

	st := svc.Status()
	assert.True(t, st.Ready)
	assert.Equal(t, "run-1", st.LastRunID)
	assert.Equal(t, "source gone", st.LastError)
	runner.AssertExpectations(t)
}

func TestAnalysisServiceConcurrentRefreshShareRun(t *testing.T) {
	runner := new(MockRunner)
	started := make(chan struct{})
	release := make(chan struct{})
	result := &pipeline.Result{RunID: "shared"}

	var once sync.Once
	runner.On("Run", mock.Anything).
		Run(func(mock.Arguments) {
			once.Do(func() { close(started) })
			<-release
		}).
		Return(result, nil)

	svc := NewAnalysisService(runner, 0, discardLogger())

	var wg sync.WaitGroup
	results := make([]*pipeline.Result, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i > 0 {
				<-started
			}
			res, err := svc.Refresh(context.Background())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	runner.AssertNumberOfCalls(t, "Run", 1)
	for _, res := range results {
		assert.Same(t, result, res)
	}
}

func TestAnalysisServiceCallerCancelDoesNotAbortRun(t *testing.T) {
	runner := new(MockRunner)
	release := make(chan struct{})
	runner.On("Run", mock.Anything).
		Run(func(args mock.Arguments) {
			<-release
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(&pipeline.Result{RunID: "late"}, nil)

	svc := NewAnalysisService(runner, time.Minute, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(ctx)
		done <- err
	}()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	assert.Eventually(t, func() bool { return svc.Status().Ready }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "late", svc.Status().LastRunID)
}
