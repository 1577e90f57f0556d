// Command compiler builds the city growth tables from the four source files
// and writes them as CSV and XLSX reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	apperrors "github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/exporter"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/infrastructure"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "compiler: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	configFile string
	dataDir    string
	reportsDir string
	startYear  int
	endYear    int
	noCSV      bool
	noXLSX     bool
	preview    int
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("compiler", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to config.yaml or configs/config.yaml if present)")
	fs.StringVar(&opts.dataDir, "data", "", "directory holding the source files")
	fs.StringVar(&opts.reportsDir, "out", "", "directory for the generated reports")
	fs.IntVar(&opts.startYear, "start", 0, "CAGR start year")
	fs.IntVar(&opts.endYear, "end", 0, "CAGR end year")
	fs.BoolVar(&opts.noCSV, "no-csv", false, "skip CSV output")
	fs.BoolVar(&opts.noXLSX, "no-xlsx", false, "skip the XLSX workbook")
	fs.IntVar(&opts.preview, "preview", -1, "rows of each table to print (default from config)")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	err := fs.Parse(args)
	return opts, err
}

// loadConfig applies command-line overrides on top of file and env config.
func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	if opts.reportsDir != "" {
		cfg.Paths.ReportsDir = opts.reportsDir
	}
	if opts.startYear != 0 {
		cfg.Analysis.StartYear = opts.startYear
	}
	if opts.endYear != 0 {
		cfg.Analysis.EndYear = opts.endYear
	}
	if opts.noCSV {
		cfg.Output.WriteCSV = false
	}
	if opts.noXLSX {
		cfg.Output.WriteXLSX = false
	}
	if opts.preview >= 0 {
		cfg.Output.PreviewRows = opts.preview
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	// Console logs go to stderr so the report preview on stdout stays clean.
	logger := infrastructure.NewLogger(stderr, cfg.Logging.Level)
	if cfg.Logging.Output != "console" {
		cfg.Logging.FilePath = cfg.LogFilePath(paths)
		if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer infrastructure.CloseLogFile()
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer providers.Shutdown(context.WithoutCancel(ctx))

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	p := pipeline.New(cfg.SourceFiles(paths), cfg.Analysis,
		pipeline.WithLogger(logger),
		pipeline.WithTracer(providers.Tracer),
		pipeline.WithMetrics(metrics),
	)

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	tables := exporter.Tables(res.Records, res.Growth, res.CAGR)

	var written []string
	if cfg.Output.WriteCSV {
		w := exporter.NewCSVWriter(paths)
		for _, t := range tables {
			path, err := w.WriteTable(t)
			if err != nil {
				return err
			}
			written = append(written, path)
		}
	}
	if cfg.Output.WriteXLSX {
		path := paths.ReportPath(config.WorkbookXLSX)
		if err := exporter.WriteWorkbook(path, tables...); err != nil {
			return err
		}
		written = append(written, path)
	}

	for _, path := range written {
		logger.InfoContext(ctx, "Report written", slog.String("path", path))
	}

	printReport(stdout, res, tables, cfg.Output.PreviewRows, written)
	return nil
}
