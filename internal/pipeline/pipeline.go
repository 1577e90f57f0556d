package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/dataprocessing"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/growth"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/infrastructure"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// Result is the immutable output of one run.
type Result struct {
	RunID       string                   `json:"run_id"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt time.Time                `json:"completed_at"`
	StartYear   int                      `json:"start_year"`
	EndYear     int                      `json:"end_year"`
	TimePoints  []domain.TimePoint       `json:"time_points"`
	Records     []domain.UnifiedRecord   `json:"-"`
	Yearly      []domain.YearlyAggregate `json:"-"`
	Growth      []domain.GrowthRecord    `json:"-"`
	CAGR        []domain.CAGRRecord      `json:"-"`
	Summary     domain.Summary           `json:"summary"`
	Steps       []*StepState             `json:"steps"`
}

// Pipeline runs parse, join, aggregate and derive over the four sources.
type Pipeline struct {
	sources   config.SourcesConfig
	startYear int
	endYear   int
	loader    *dataprocessing.Loader
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.PipelineMetrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run and stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithMetrics sets the metric instruments.
func WithMetrics(metrics *infrastructure.PipelineMetrics) Option {
	return func(p *Pipeline) {
		p.metrics = metrics
	}
}

// New creates a pipeline over resolved source paths and a CAGR window.
func New(sources config.SourcesConfig, analysis config.AnalysisConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		sources:   sources,
		startYear: analysis.StartYear,
		endYear:   analysis.EndYear,
		logger:    slog.Default(),
		tracer:    otel.Tracer(infrastructure.MeterName),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = infrastructure.WithComponent(p.logger, "pipeline")
	p.loader = dataprocessing.NewLoader(p.logger)
	return p
}

// Run executes every stage in order. Any stage failure aborts the run and is
// returned as a *StageError; no partial result is returned.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("cagr.start_year", p.startYear),
		attribute.Int("cagr.end_year", p.endYear),
	))
	defer span.End()

	res := &Result{
		RunID:     runID,
		StartedAt: time.Now(),
		StartYear: p.startYear,
		EndYear:   p.endYear,
		Steps: []*StepState{
			NewStepState(StageParse),
			NewStepState(StageJoin),
			NewStepState(StageAggregate),
			NewStepState(StageDerive),
		},
	}

	p.logger.InfoContext(ctx, "Pipeline run started",
		slog.Int("start_year", p.startYear),
		slog.Int("end_year", p.endYear))

	var sources dataprocessing.SourceSet
	stages := []func(context.Context, *StepState) error{
		func(ctx context.Context, st *StepState) error {
			var err error
			sources, err = p.parse(ctx, st)
			return err
		},
		func(ctx context.Context, st *StepState) error {
			res.TimePoints = sources.TimePoints
			res.Records = dataprocessing.Reconcile(sources)
			st.SetCount("records", len(res.Records))
			return nil
		},
		func(ctx context.Context, st *StepState) error {
			res.Yearly = growth.AggregateYearly(res.Records)
			st.SetCount("yearly", len(res.Yearly))
			return nil
		},
		func(ctx context.Context, st *StepState) error {
			res.Growth = growth.YearOverYear(res.Yearly)
			res.CAGR = growth.CAGR(res.Yearly, p.startYear, p.endYear)
			st.SetCount("growth", len(res.Growth))
			st.SetCount("cagr", len(res.CAGR))
			return nil
		},
	}

	for i, run := range stages {
		if err := p.runStage(ctx, res.Steps[i], run); err != nil {
			for _, rest := range res.Steps[i+1:] {
				rest.Skip("previous stage failed")
			}
			infrastructure.RecordError(ctx, err)
			p.metrics.RecordRun(ctx, time.Since(res.StartedAt), err)
			p.logger.ErrorContext(ctx, "Pipeline run failed",
				slog.String("stage", res.Steps[i].ID()),
				slog.String("error", err.Error()))
			return nil, err
		}
	}

	res.Summary = Summarize(res.Records, res.TimePoints)
	res.CompletedAt = time.Now()

	p.metrics.RecordRun(ctx, res.CompletedAt.Sub(res.StartedAt), nil)
	p.metrics.RecordTable(ctx, "records", len(res.Records))
	p.metrics.RecordTable(ctx, "growth", len(res.Growth))
	p.metrics.RecordTable(ctx, "cagr", len(res.CAGR))

	p.logger.InfoContext(ctx, "Pipeline run completed",
		slog.Int("cities", res.Summary.TotalCities),
		slog.Int("records", len(res.Records)),
		slog.Int("growth_rows", len(res.Growth)),
		slog.Int("cagr_rows", len(res.CAGR)),
		slog.Duration("duration", res.CompletedAt.Sub(res.StartedAt)))

	return res, nil
}

func (p *Pipeline) runStage(ctx context.Context, st *StepState, run func(context.Context, *StepState) error) error {
	if err := ctx.Err(); err != nil {
		st.Fail(err)
		return &StageError{Stage: st.ID(), Cause: err}
	}

	ctx, span := p.tracer.Start(ctx, "pipeline."+st.ID())
	defer span.End()

	st.Start()
	err := run(ctx, st)
	if err != nil {
		st.Fail(err)
		infrastructure.RecordError(ctx, err)
		p.metrics.RecordStage(ctx, st.ID(), st.Duration(), err)
		return &StageError{Stage: st.ID(), Cause: err}
	}
	st.Complete()
	p.metrics.RecordStage(ctx, st.ID(), st.Duration(), nil)

	p.logger.DebugContext(ctx, "Stage completed",
		slog.String("stage", st.ID()),
		slog.Duration("duration", st.Duration()))
	return nil
}

// parse reads the four sources concurrently into fixed slots so the result
// does not depend on completion order.
func (p *Pipeline) parse(ctx context.Context, st *StepState) (dataprocessing.SourceSet, error) {
	var (
		employment, salary, population *dataprocessing.TabularSource
		housing                        domain.SeriesByCity
	)

	g, gctx := errgroup.WithContext(ctx)
	tabular := []struct {
		path   string
		metric domain.Metric
		dst    **dataprocessing.TabularSource
	}{
		{p.sources.EmploymentFile, domain.MetricEmploymentRate, &employment},
		{p.sources.SalaryFile, domain.MetricHourlySalary, &salary},
		{p.sources.PopulationFile, domain.MetricPopulation, &population},
	}
	for _, t := range tabular {
		g.Go(func() error {
			src, err := p.loader.LoadTabular(gctx, t.path, t.metric)
			if err != nil {
				return err
			}
			*t.dst = src
			return nil
		})
	}
	g.Go(func() error {
		series, err := p.loader.LoadHousing(gctx, p.sources.HousingFile)
		if err != nil {
			return err
		}
		housing = series
		return nil
	})

	if err := g.Wait(); err != nil {
		return dataprocessing.SourceSet{}, err
	}

	for _, src := range []*dataprocessing.TabularSource{employment, salary, population} {
		st.SetCount(string(src.Metric), src.Cities())
		p.metrics.RecordSource(ctx, string(src.Metric), src.Cities())
	}
	st.SetCount(string(domain.MetricHousingIndex), len(housing))
	st.SetCount("time_points", len(employment.TimePoints))
	p.metrics.RecordSource(ctx, string(domain.MetricHousingIndex), len(housing))

	return dataprocessing.SourceSet{
		Employment: employment.Series,
		Salary:     salary.Series,
		Population: population.Series,
		Housing:    housing,
		TimePoints: employment.TimePoints,
	}, nil
}

// Summarize describes the extent of a record set.
func Summarize(records []domain.UnifiedRecord, timePoints []domain.TimePoint) domain.Summary {
	s := domain.Summary{
		TotalDataPoints: len(records),
		TimePoints:      len(timePoints),
	}
	cities := make(map[string]struct{})
	for i, r := range records {
		cities[r.City] = struct{}{}
		if i == 0 || r.Year < s.FirstYear {
			s.FirstYear = r.Year
		}
		if i == 0 || r.Year > s.LastYear {
			s.LastYear = r.Year
		}
	}
	s.TotalCities = len(cities)
	return s
}
