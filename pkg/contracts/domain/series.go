package domain

import (
	"errors"
	"fmt"
)

// Metric names one of the source measurements.
type Metric string

const (
	MetricEmploymentRate Metric = "employment_rate"
	MetricHourlySalary   Metric = "hourly_salary"
	MetricPopulation     Metric = "population"
	MetricHousingIndex   Metric = "housing_index"
)

// ErrSeriesShape is returned when points and values disagree in length.
var ErrSeriesShape = errors.New("series points and values differ in length")

// CitySeries holds one metric's values for one city keyed by TimePoint.
// It is immutable once built.
type CitySeries struct {
	city   string
	metric Metric
	points []TimePoint
	values map[TimePoint]Value
}

// NewCitySeries builds a series from parallel point and value slices. Point
// order is preserved; when a point repeats, its first value is kept.
func NewCitySeries(city string, metric Metric, points []TimePoint, values []Value) (*CitySeries, error) {
	if len(points) != len(values) {
		return nil, fmt.Errorf("%w: %s/%s has %d points and %d values",
			ErrSeriesShape, city, metric, len(points), len(values))
	}

	s := &CitySeries{
		city:   city,
		metric: metric,
		points: make([]TimePoint, 0, len(points)),
		values: make(map[TimePoint]Value, len(points)),
	}
	for i, tp := range points {
		if _, seen := s.values[tp]; seen {
			continue
		}
		s.points = append(s.points, tp)
		s.values[tp] = values[i]
	}
	return s, nil
}

// City returns the series' city name.
func (s *CitySeries) City() string { return s.city }

// Metric returns the measured metric.
func (s *CitySeries) Metric() Metric { return s.metric }

// Len returns the number of distinct time points.
func (s *CitySeries) Len() int { return len(s.points) }

// Points returns a copy of the time points in source order.
func (s *CitySeries) Points() []TimePoint {
	out := make([]TimePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Get returns the value at tp, or null when the point is absent.
// A nil series yields null for every point.
func (s *CitySeries) Get(tp TimePoint) Value {
	if s == nil {
		return Null()
	}
	return s.values[tp]
}

// SeriesByCity maps a city name to its series for a single metric.
type SeriesByCity map[string]*CitySeries

// Lookup returns the value for (city, tp), null when either is absent.
func (m SeriesByCity) Lookup(city string, tp TimePoint) Value {
	return m[city].Get(tp)
}
