package http

import (
	"context"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/services"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// CityServiceInterface defines the read and refresh operations the API needs
type CityServiceInterface interface {
	Summary() (services.SummaryView, error)
	Cities() ([]string, error)
	Records(city string) ([]domain.UnifiedRecord, error)
	Growth(city string) ([]domain.GrowthRecord, error)
	CAGR(start, end int) ([]domain.CAGRRecord, error)
	Refresh(ctx context.Context) (*pipeline.Result, error)
}
