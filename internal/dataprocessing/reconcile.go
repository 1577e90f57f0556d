package dataprocessing

import (
	"sort"
	"strings"

	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// HoursPerMonth converts an hourly wage into a monthly one.
const HoursPerMonth = 160

// cityPrefix is dropped from survey city names when looking up housing series,
// which are keyed by bare metro-area name.
const cityPrefix = "Ciudad de "

// SourceSet bundles the four parsed inputs of a reconciliation.
// TimePoints is the canonical time axis, taken from the employment file.
type SourceSet struct {
	Employment domain.SeriesByCity
	Salary     domain.SeriesByCity
	Population domain.SeriesByCity
	Housing    domain.SeriesByCity
	TimePoints []domain.TimePoint
}

// Reconcile joins the sources into one record per (city, time point). Every
// city found in the employment, salary or population sources gets a row for
// every canonical time point that parses as a quarter; absent data is null.
// Housing-only cities add no rows. Output is ordered by city, then time point.
func Reconcile(src SourceSet) []domain.UnifiedRecord {
	cities := cityUniverse(src.Employment, src.Salary, src.Population)

	type slot struct {
		tp            domain.TimePoint
		year, quarter int
	}
	slots := make([]slot, 0, len(src.TimePoints))
	for _, tp := range src.TimePoints {
		year, quarter, ok := tp.YearQuarter()
		if !ok {
			continue
		}
		slots = append(slots, slot{tp: tp, year: year, quarter: quarter})
	}

	records := make([]domain.UnifiedRecord, 0, len(cities)*len(slots))
	for _, city := range cities {
		housing := housingSeries(src.Housing, city)
		for _, s := range slots {
			hourly := src.Salary.Lookup(city, s.tp)
			index := housing.Get(s.tp)
			monthly := MonthlySalary(hourly)

			records = append(records, domain.UnifiedRecord{
				City:           city,
				TimePoint:      s.tp,
				Year:           s.year,
				Quarter:        s.quarter,
				EmploymentRate: src.Employment.Lookup(city, s.tp),
				HourlySalary:   hourly,
				Population:     src.Population.Lookup(city, s.tp),
				HousingIndex:   index,
				MonthlySalary:  monthly,
				RealWage:       RealWage(monthly, index),
			})
		}
	}
	return records
}

// MonthlySalary is hourly × HoursPerMonth, null when hourly is null.
func MonthlySalary(hourly domain.Value) domain.Value {
	h, ok := hourly.Float64()
	if !ok {
		return domain.Null()
	}
	return domain.Some(h * HoursPerMonth)
}

// RealWage deflates a monthly salary by the housing index. It is null when
// either input is null or the index is not strictly positive.
func RealWage(monthly, housingIndex domain.Value) domain.Value {
	m, ok := monthly.Float64()
	if !ok || !housingIndex.Positive() {
		return domain.Null()
	}
	idx, _ := housingIndex.Float64()
	return domain.Some(m / idx)
}

// housingSeries finds the housing series for a survey city: first by the name
// without the "Ciudad de " prefix, then by the literal name. A nil result
// yields null for every lookup.
func housingSeries(housing domain.SeriesByCity, city string) *domain.CitySeries {
	if s, ok := housing[strings.ReplaceAll(city, cityPrefix, "")]; ok {
		return s
	}
	return housing[city]
}

func cityUniverse(sources ...domain.SeriesByCity) []string {
	seen := make(map[string]struct{})
	for _, src := range sources {
		for city := range src {
			if city == "" || IsAggregateLabel(city) {
				continue
			}
			seen[city] = struct{}{}
		}
	}

	cities := make([]string, 0, len(seen))
	for city := range seen {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}
