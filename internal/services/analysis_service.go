package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/growth"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// Runner produces a compiled result. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// SummaryView is the public description of the cached data.
type SummaryView struct {
	domain.Summary
	RunID      string                `json:"run_id"`
	CompiledAt time.Time             `json:"compiled_at"`
	CAGRStart  int                   `json:"cagr_start_year"`
	CAGREnd    int                   `json:"cagr_end_year"`
	GrowthRows int                   `json:"growth_rows"`
	CAGRRows   int                   `json:"cagr_rows"`
	Stages     []*pipeline.StepState `json:"stages"`
}

// RefreshStatus reports the outcome of the last refresh attempt.
type RefreshStatus struct {
	Ready       bool      `json:"ready"`
	LastRunID   string    `json:"last_run_id,omitempty"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

type span struct{ lo, hi int }

// AnalysisService serves read queries from the latest compiled result.
type AnalysisService struct {
	runner  Runner
	timeout time.Duration
	logger  *slog.Logger
	group   singleflight.Group

	mu          sync.RWMutex
	result      *pipeline.Result
	cities      []string
	recordIdx   map[string]span
	growthIdx   map[string]span
	lastAttempt time.Time
	lastErr     error
}

// NewAnalysisService creates the service. timeout bounds each refresh run;
// zero means no bound beyond the caller's context.
func NewAnalysisService(runner Runner, timeout time.Duration, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		runner:  runner,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "analysis_service")),
	}
}

// Refresh runs the pipeline and swaps in its result. Calls made while a run
// is in flight wait for that run instead of starting another. On failure the
// previously cached result stays in service.
func (s *AnalysisService) Refresh(ctx context.Context) (*pipeline.Result, error) {
	ch := s.group.DoChan("refresh", func() (interface{}, error) {
		// Detached so one impatient caller cannot cancel a run others share.
		runCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
			defer cancel()
		}
		return s.refresh(runCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*pipeline.Result), nil
	}
}

func (s *AnalysisService) refresh(ctx context.Context) (*pipeline.Result, error) {
	start := time.Now()
	s.logger.InfoContext(ctx, "Refreshing city data")

	result, err := s.runner.Run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAttempt = start
	s.lastErr = err

	if err != nil {
		s.logger.ErrorContext(ctx, "Refresh failed, keeping previous data",
			slog.String("error", err.Error()),
			slog.Bool("has_previous", s.result != nil))
		return nil, err
	}

	s.result = result
	s.cities, s.recordIdx = indexRecords(result.Records)
	s.growthIdx = indexGrowth(result.Growth)

	s.logger.InfoContext(ctx, "City data refreshed",
		slog.String("run_id", result.RunID),
		slog.Int("cities", len(s.cities)),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

// Status reports whether data is available and how the last refresh went.
func (s *AnalysisService) Status() RefreshStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := RefreshStatus{Ready: s.result != nil, LastAttempt: s.lastAttempt}
	if s.result != nil {
		st.LastRunID = s.result.RunID
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Result returns the cached result.
func (s *AnalysisService) Result() (*pipeline.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, ErrDataNotReady
	}
	return s.result, nil
}

// Summary describes the cached data.
func (s *AnalysisService) Summary() (SummaryView, error) {
	res, err := s.Result()
	if err != nil {
		return SummaryView{}, err
	}
	return SummaryView{
		Summary:    res.Summary,
		RunID:      res.RunID,
		CompiledAt: res.CompletedAt,
		CAGRStart:  res.StartYear,
		CAGREnd:    res.EndYear,
		GrowthRows: len(res.Growth),
		CAGRRows:   len(res.CAGR),
		Stages:     res.Steps,
	}, nil
}

// Cities returns the sorted city names.
func (s *AnalysisService) Cities() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, ErrDataNotReady
	}
	out := make([]string, len(s.cities))
	copy(out, s.cities)
	return out, nil
}

// Records returns the unified records for one city, or every record when city
// is empty.
func (s *AnalysisService) Records(city string) ([]domain.UnifiedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, ErrDataNotReady
	}
	if city == "" {
		return s.result.Records, nil
	}
	sp, ok := s.recordIdx[city]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	return s.result.Records[sp.lo:sp.hi], nil
}

// Growth returns year-over-year rows for one city, or all rows when city is
// empty. A known city with a single year has no rows.
func (s *AnalysisService) Growth(city string) ([]domain.GrowthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, ErrDataNotReady
	}
	if city == "" {
		return s.result.Growth, nil
	}
	if _, known := s.recordIdx[city]; !known {
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	sp, ok := s.growthIdx[city]
	if !ok {
		return []domain.GrowthRecord{}, nil
	}
	return s.result.Growth[sp.lo:sp.hi], nil
}

// CAGR computes compound growth over [start, end] from the cached yearly
// aggregates. The configured window is served from the cached table.
func (s *AnalysisService) CAGR(start, end int) ([]domain.CAGRRecord, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	if start == res.StartYear && end == res.EndYear {
		return res.CAGR, nil
	}
	return growth.CAGR(res.Yearly, start, end), nil
}

// indexRecords relies on records being sorted by city.
func indexRecords(records []domain.UnifiedRecord) ([]string, map[string]span) {
	idx := make(map[string]span)
	var cities []string
	for i := 0; i < len(records); {
		j := i + 1
		for j < len(records) && records[j].City == records[i].City {
			j++
		}
		cities = append(cities, records[i].City)
		idx[records[i].City] = span{i, j}
		i = j
	}
	if cities == nil {
		cities = []string{}
	}
	return cities, idx
}

// indexGrowth relies on growth rows being sorted by city.
func indexGrowth(rows []domain.GrowthRecord) map[string]span {
	idx := make(map[string]span)
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].City == rows[i].City {
			j++
		}
		idx[rows[i].City] = span{i, j}
		i = j
	}
	return idx
}
