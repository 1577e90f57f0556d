package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	apierrors "github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
	mw "github.com/andresfortunato/mexico-city-growth-tool/internal/middleware"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/services"
	api "github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/api/v1"
)

// CityHandler handles city data requests with RFC 7807 compliance
type CityHandler struct {
	service      CityServiceInterface
	defaults     config.AnalysisConfig
	validator    *mw.Validator
	query        *mw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewCityHandler creates a city handler. defaults supplies the CAGR window
// when the request omits start or end.
func NewCityHandler(service CityServiceInterface, defaults config.AnalysisConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "city_handler"))
	return &CityHandler{
		service:      service,
		defaults:     defaults,
		validator:    mw.NewValidator(),
		query:        mw.NewQueryParamValidator(logger, errorHandler),
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Routes returns the city data routes
func (h *CityHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/cities", h.GetCities)
	r.Get("/records", h.GetRecords)
	r.Get("/growth", h.GetGrowth)
	r.Get("/cagr", h.GetCAGR)
	r.Post("/refresh", h.Refresh)

	return r
}

// GetSummary handles GET /summary
func (h *CityHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	render.JSON(w, r, api.Success(summary))
}

// GetCities handles GET /cities
func (h *CityHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.Cities()
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	render.JSON(w, r, api.List(cities, len(cities)))
}

// GetRecords handles GET /records?city=
func (h *CityHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	req := cityRequest(r)
	records, err := h.service.Records(req.City)
	if err != nil {
		h.fail(w, r, req.City, err)
		return
	}
	render.JSON(w, r, api.List(records, len(records)))
}

// GetGrowth handles GET /growth?city=
func (h *CityHandler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	req := cityRequest(r)
	rows, err := h.service.Growth(req.City)
	if err != nil {
		h.fail(w, r, req.City, err)
		return
	}
	render.JSON(w, r, api.List(rows, len(rows)))
}

// GetCAGR handles GET /cagr?start=&end=. Missing bounds fall back to the
// configured window.
func (h *CityHandler) GetCAGR(w http.ResponseWriter, r *http.Request) {
	start, ok := h.query.ValidateInt(w, r, "start", h.defaults.StartYear)
	if !ok {
		return
	}
	end, ok := h.query.ValidateInt(w, r, "end", h.defaults.EndYear)
	if !ok {
		return
	}

	q := api.CAGRRequest{Start: start, End: end}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.CAGR(q.Start, q.End)
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	resp := api.List(rows, len(rows))
	resp.Window = &q
	render.JSON(w, r, resp)
}

// Refresh handles POST /refresh. It blocks until the run finishes.
func (h *CityHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.InfoContext(r.Context(), "refresh requested",
		slog.String("request_id", reqID))

	result, err := h.service.Refresh(r.Context())
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	render.JSON(w, r, api.List(result, len(result.Records)))
}

// fail maps service sentinels to API errors. Anything else, including
// pipeline stage errors wrapping an AppError, goes to the error handler as is.
func (h *CityHandler) fail(w http.ResponseWriter, r *http.Request, city string, err error) {
	switch {
	case errors.Is(err, services.ErrDataNotReady):
		err = apierrors.ErrDataNotReady
	case errors.Is(err, services.ErrCityNotFound):
		err = apierrors.CityNotFoundError(city)
	}
	h.errorHandler.HandleError(w, r, err)
}

func cityRequest(r *http.Request) api.CityRequest {
	return api.CityRequest{City: strings.TrimSpace(r.URL.Query().Get("city"))}
}
