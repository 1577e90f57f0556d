package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/infrastructure"
	customMiddleware "github.com/andresfortunato/mexico-city-growth-tool/internal/middleware"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/services"
	handlers "github.com/andresfortunato/mexico-city-growth-tool/internal/transport/http"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts"
)

// Application wires configuration, the compilation pipeline and the HTTP API.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Sources       config.SourcesConfig
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Pipeline      *pipeline.Pipeline
	Analysis      *services.AnalysisService
	Health        *services.HealthService
	ErrorHandler  *errors.ErrorHandler
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Sources:       cfg.SourceFiles(paths),
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  errors.NewErrorHandler(logger, false),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the pipeline and the services that read from it
func (a *Application) initializeServices() {
	a.Pipeline = pipeline.New(a.Sources, a.Config.Analysis,
		pipeline.WithLogger(a.Logger),
		pipeline.WithTracer(a.OTelProviders.Tracer),
		pipeline.WithMetrics(a.Metrics),
	)
	a.Analysis = services.NewAnalysisService(a.Pipeline, a.Config.Server.RefreshTimeout, a.Logger)
	a.Health = services.NewHealthService(contracts.Version, a.Sources, a.Analysis, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Order: RequestID → RealIP → OTel → Logger → Recovery
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.StripSlashes)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.Config.Server.ReadTimeout))
			r.Use(customMiddleware.Compress(5))

			healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)
		})

		// Refresh runs the whole pipeline, so data routes get the longer budget.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.Config.Server.RefreshTimeout))
			r.Use(customMiddleware.Compress(5))

			cityHandler := handlers.NewCityHandler(a.Analysis, a.Config.Analysis, a.Logger, a.ErrorHandler)
			r.Mount("/", cityHandler.Routes())
		})
	})
}

// getCORSConfig builds the CORS settings from the security config
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout + a.Config.Server.RefreshTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start compiles the initial data set in the background and starts serving.
// A failed initial compile leaves the API up; data routes answer 503 until a
// refresh succeeds.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.performStartupHealthCheck(ctx)

	go func() {
		if _, err := a.Analysis.Refresh(ctx); err != nil {
			a.Logger.WarnContext(ctx, "Initial compilation failed", slog.String("error", err.Error()))
		}
	}()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}

// performStartupHealthCheck logs missing source files and an unwritable
// reports directory. Neither is fatal.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	for name, path := range map[string]string{
		"employment": a.Sources.EmploymentFile,
		"salary":     a.Sources.SalaryFile,
		"population": a.Sources.PopulationFile,
		"housing":    a.Sources.HousingFile,
	} {
		if !config.FileExists(path) {
			a.Logger.WarnContext(ctx, "Source file not found",
				slog.String("source", name),
				slog.String("path", path))
		}
	}

	probe := a.Paths.ReportPath(".write_test")
	if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
		a.Logger.WarnContext(ctx, "Reports directory not writable",
			slog.String("dir", a.Paths.ReportsDir),
			slog.String("error", err.Error()))
		return
	}
	_ = os.Remove(probe)
}
