package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	apperrors "github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/shared/testutil"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

func newTestPipeline(sources config.SourcesConfig, start, end int) *Pipeline {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(sources, config.AnalysisConfig{StartYear: start, EndYear: end}, WithLogger(logger))
}

func TestRunProducesAllTables(t *testing.T) {
	res, err := newTestPipeline(testutil.WriteSources(t), 2015, 2016).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.TimePoints, 8)
	assert.Len(t, res.Records, 16, "two cities by eight quarters")
	assert.Equal(t, "Ciudad de México", res.Records[0].City)
	assert.Equal(t, "León", res.Records[8].City)

	assert.Len(t, res.Yearly, 4)
	assert.Len(t, res.Growth, 2, "first year of each city has no predecessor")
	require.Len(t, res.CAGR, 2)

	assert.Equal(t, domain.Summary{
		TotalCities:     2,
		FirstYear:       2015,
		LastYear:        2016,
		TotalDataPoints: 16,
		TimePoints:      8,
	}, res.Summary)

	for _, st := range res.Steps {
		assert.Equal(t, StepStatusCompleted, st.Status(), st.ID())
	}
	assert.Equal(t, 16, res.Steps[1].Count("records"))
}

func TestRunDerivesRealWage(t *testing.T) {
	res, err := newTestPipeline(testutil.WriteSources(t), 2015, 2016).Run(context.Background())
	require.NoError(t, err)

	first := res.Records[0]
	assert.Equal(t, domain.TimePoint("2015Q1"), first.TimePoint)
	assert.Equal(t, domain.Some(6720), first.MonthlySalary)
	assert.Equal(t, domain.Some(120), first.HousingIndex)
	assert.InDelta(t, 56.0, first.RealWage.Float64Or(0), 1e-9)

	leon2016 := res.Records[12]
	assert.Equal(t, "León", leon2016.City)
	assert.Equal(t, domain.TimePoint("2016Q1"), leon2016.TimePoint)
	assert.False(t, leon2016.HourlySalary.Valid())
	assert.False(t, leon2016.RealWage.Valid())

	require.NotEmpty(t, res.Growth)
	assert.Equal(t, "Ciudad de México", res.Growth[0].City)
	assert.InDelta(t, 2.5, res.Growth[0].PopulationGrowth.Float64Or(0), 1e-9)

	cdmx := res.CAGR[0]
	assert.Equal(t, "Ciudad de México", cdmx.City)
	assert.InDelta(t, 2.5, cdmx.PopulationCAGR.Float64Or(0), 1e-9)
}

func TestRunIsDeterministic(t *testing.T) {
	sources := testutil.WriteSources(t)

	first, err := newTestPipeline(sources, 2015, 2020).Run(context.Background())
	require.NoError(t, err)
	second, err := newTestPipeline(sources, 2015, 2020).Run(context.Background())
	require.NoError(t, err)

	a, err := json.Marshal([]any{first.Records, first.Growth, first.CAGR})
	require.NoError(t, err)
	b, err := json.Marshal([]any{second.Records, second.Growth, second.CAGR})
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunMissingSource(t *testing.T) {
	sources := testutil.WriteSources(t)
	sources.HousingFile = filepath.Join(t.TempDir(), "missing.csv")

	res, err := newTestPipeline(sources, 2015, 2020).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageParse, stageErr.Stage)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceUnavailable))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(testutil.WriteSources(t), 2015, 2020).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, domain.Summary{}, Summarize(nil, nil))
}

func TestStepStateTransitions(t *testing.T) {
	st := NewStepState(StageJoin)
	assert.Equal(t, StepStatusPending, st.Status())
	assert.Zero(t, st.Duration())

	st.Start()
	st.SetCount("records", 3)
	st.Fail(errors.New("boom"))
	assert.Equal(t, StepStatusFailed, st.Status())
	assert.EqualError(t, st.Err(), "boom")

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"failed"`)
	assert.Contains(t, string(raw), `"records":3`)
	assert.Contains(t, string(raw), `"error":"boom"`)
}
