package dataprocessing

import (
	"context"
	"log/slog"
	"os"

	apperrors "github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// Loader opens source files and parses them. Every failure to read or
// structurally parse a file is returned as a SOURCE_UNAVAILABLE AppError.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataprocessing"))}
}

// LoadTabular parses one metric's HTML table export.
func (l *Loader) LoadTabular(ctx context.Context, path string, metric domain.Metric) (*TabularSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(path, err).WithContext("metric", string(metric))
	}
	defer f.Close()

	logger := l.logger.With(slog.String("path", path))
	logger.DebugContext(ctx, "Reading tabular source", slog.String("metric", string(metric)))

	src, err := ParseTabular(f, metric, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to parse tabular source", slog.String("error", err.Error()))
		cause := apperrors.NewParsingError("malformed "+string(metric)+" table", err)
		return nil, apperrors.NewSourceUnavailableError(path, cause).WithContext("metric", string(metric))
	}
	return src, nil
}

// LoadHousing parses the housing price index file.
func (l *Loader) LoadHousing(ctx context.Context, path string) (domain.SeriesByCity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(path, err).WithContext("metric", string(domain.MetricHousingIndex))
	}
	defer f.Close()

	logger := l.logger.With(slog.String("path", path))
	logger.DebugContext(ctx, "Reading housing index")

	series, err := ParseHousing(f, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to parse housing index", slog.String("error", err.Error()))
		cause := apperrors.NewParsingError("malformed housing index", err)
		return nil, apperrors.NewSourceUnavailableError(path, cause).WithContext("metric", string(domain.MetricHousingIndex))
	}
	return series, nil
}

// ParseTabularFile parses a table export using the default logger.
func ParseTabularFile(ctx context.Context, path string, metric domain.Metric) (*TabularSource, error) {
	return NewLoader(nil).LoadTabular(ctx, path, metric)
}

// ParseHousingFile parses the housing index file using the default logger.
func ParseHousingFile(ctx context.Context, path string) (domain.SeriesByCity, error) {
	return NewLoader(nil).LoadHousing(ctx, path)
}
