package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// Column headers of the housing price index export.
const (
	housingColumnID      = "Global"
	housingColumnYear    = "Año"
	housingColumnQuarter = "Trimestre"
	housingColumnIndex   = "Indice"

	metroAreaPrefix = "ZM "
)

// housingAliases maps metro-area names whose spelling differs from the
// employment survey's city names.
var housingAliases = map[string]string{
	"Valle México": "Ciudad de México",
	"PueblaTlax":   "Ciudad de Puebla",
}

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("required column missing")

// NormalizeHousingCity turns a metro-area identifier such as "ZM Valle México"
// into the city name used for joins.
func NormalizeHousingCity(id string) string {
	name := strings.TrimPrefix(id, metroAreaPrefix)
	if alias, ok := housingAliases[name]; ok {
		return alias
	}
	return name
}

// ParseHousing reads the semicolon-delimited Latin-1 housing index file and
// returns one series per metro area. Rows that are not metro areas are ignored.
func ParseHousing(r io.Reader, logger *slog.Logger) (domain.SeriesByCity, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reader := csv.NewReader(latin1(r))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := housingColumns(header)
	if err != nil {
		return nil, err
	}

	type accum struct {
		points []domain.TimePoint
		values []domain.Value
	}
	byCity := make(map[string]*accum)
	var order []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		id := field(record, cols.id)
		if !strings.HasPrefix(id, metroAreaPrefix) {
			continue
		}
		city := NormalizeHousingCity(id)

		a, ok := byCity[city]
		if !ok {
			a = &accum{}
			byCity[city] = a
			order = append(order, city)
		}
		a.points = append(a.points, domain.NewTimePoint(field(record, cols.year), field(record, cols.quarter)))
		a.values = append(a.values, ParseCell(field(record, cols.index)))
	}

	result := make(domain.SeriesByCity, len(byCity))
	for _, city := range order {
		a := byCity[city]
		series, err := domain.NewCitySeries(city, domain.MetricHousingIndex, a.points, a.values)
		if err != nil {
			return nil, err
		}
		if series.Len() != len(a.points) {
			logger.Debug("Dropped duplicate housing time points",
				slog.String("city", city),
				slog.Int("duplicates", len(a.points)-series.Len()))
		}
		result[city] = series
	}

	logger.Info("Parsed housing index", slog.Int("cities", len(result)))
	return result, nil
}

type housingColumnIndexes struct {
	id, year, quarter, index int
}

func housingColumns(header []string) (housingColumnIndexes, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var cols housingColumnIndexes
	targets := []struct {
		name string
		dst  *int
	}{
		{housingColumnID, &cols.id},
		{housingColumnYear, &cols.year},
		{housingColumnQuarter, &cols.quarter},
		{housingColumnIndex, &cols.index},
	}
	for _, t := range targets {
		i, ok := pos[t.name]
		if !ok {
			return cols, fmt.Errorf("%w: %q", ErrMissingColumn, t.name)
		}
		*t.dst = i
	}
	return cols, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
