package growth

import (
	"math"
	"sort"

	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// Default CAGR window.
const (
	DefaultStartYear = 2015
	DefaultEndYear   = 2020
)

// Result bundles every table derived from a set of unified records.
type Result struct {
	Yearly []domain.YearlyAggregate
	Growth []domain.GrowthRecord
	CAGR   []domain.CAGRRecord
}

// Compute aggregates records by year, then derives year-over-year growth and
// CAGR over [startYear, endYear].
func Compute(records []domain.UnifiedRecord, startYear, endYear int) Result {
	yearly := AggregateYearly(records)
	return Result{
		Yearly: yearly,
		Growth: YearOverYear(yearly),
		CAGR:   CAGR(yearly, startYear, endYear),
	}
}

type cityYear struct {
	city string
	year int
}

// mean accumulates the average of present values.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v domain.Value) {
	if f, ok := v.Float64(); ok {
		m.sum += f
		m.n++
	}
}

func (m mean) value() domain.Value {
	if m.n == 0 {
		return domain.Null()
	}
	return domain.Some(m.sum / float64(m.n))
}

type yearAccum struct {
	employment, monthly, real, population, housing mean
}

// AggregateYearly averages each metric over a city's quarters within a year,
// ignoring nulls. A metric with no present quarter is null for that year.
// Output is ordered by city, then year.
func AggregateYearly(records []domain.UnifiedRecord) []domain.YearlyAggregate {
	groups := make(map[cityYear]*yearAccum)
	for _, r := range records {
		key := cityYear{city: r.City, year: r.Year}
		acc, ok := groups[key]
		if !ok {
			acc = &yearAccum{}
			groups[key] = acc
		}
		acc.employment.add(r.EmploymentRate)
		acc.monthly.add(r.MonthlySalary)
		acc.real.add(r.RealWage)
		acc.population.add(r.Population)
		acc.housing.add(r.HousingIndex)
	}

	out := make([]domain.YearlyAggregate, 0, len(groups))
	for key, acc := range groups {
		out = append(out, domain.YearlyAggregate{
			City:           key.city,
			Year:           key.year,
			EmploymentRate: acc.employment.value(),
			MonthlySalary:  acc.monthly.value(),
			RealWage:       acc.real.value(),
			Population:     acc.population.value(),
			HousingIndex:   acc.housing.value(),
		})
	}
	sortAggregates(out)
	return out
}

// YearOverYear computes percentage growth between consecutive years of each
// city. A city's first year has no row, so single-year cities produce nothing.
// Output is ordered by city, then year.
func YearOverYear(aggregates []domain.YearlyAggregate) []domain.GrowthRecord {
	out := make([]domain.GrowthRecord, 0, len(aggregates))
	for _, rows := range byCity(aggregates) {
		for i := 1; i < len(rows); i++ {
			prev, curr := rows[i-1], rows[i]
			out = append(out, domain.GrowthRecord{
				YearlyAggregate:   curr,
				PopulationGrowth:  Rate(curr.Population, prev.Population),
				RealWageGrowth:    Rate(curr.RealWage, prev.RealWage),
				NominalWageGrowth: Rate(curr.MonthlySalary, prev.MonthlySalary),
			})
		}
	}
	return out
}

// CAGR computes compound annual growth for each city over the window
// [startYear, endYear]. Cities need at least two yearly rows inside the
// window; the first and last of those rows are compared even when they are
// not the window bounds, while the exponent always uses the configured span.
// Output is ordered by city.
func CAGR(aggregates []domain.YearlyAggregate, startYear, endYear int) []domain.CAGRRecord {
	span := endYear - startYear
	if span < 1 {
		span = 1
	}

	inWindow := make([]domain.YearlyAggregate, 0, len(aggregates))
	for _, a := range aggregates {
		if a.Year >= startYear && a.Year <= endYear {
			inWindow = append(inWindow, a)
		}
	}

	out := make([]domain.CAGRRecord, 0)
	for _, rows := range byCity(inWindow) {
		if len(rows) < 2 {
			continue
		}
		first, last := rows[0], rows[len(rows)-1]
		out = append(out, domain.CAGRRecord{
			City:            first.City,
			StartYear:       startYear,
			EndYear:         endYear,
			Span:            span,
			FirstYear:       first.Year,
			LastYear:        last.Year,
			PopulationCAGR:  CompoundRate(last.Population, first.Population, span),
			RealWageCAGR:    CompoundRate(last.RealWage, first.RealWage, span),
			NominalWageCAGR: CompoundRate(last.MonthlySalary, first.MonthlySalary, span),
		})
	}
	return out
}

// Rate is ((curr/prev) - 1) × 100. It is null unless prev is present and
// strictly positive, or when curr is null.
func Rate(curr, prev domain.Value) domain.Value {
	if !prev.Positive() {
		return domain.Null()
	}
	c, ok := curr.Float64()
	if !ok {
		return domain.Null()
	}
	p, _ := prev.Float64()
	return domain.Some((c/p - 1) * 100)
}

// CompoundRate is ((last/first)^(1/span) - 1) × 100. It is null unless first
// is present and strictly positive, when last is null, or when the power is
// undefined (a negative ratio).
func CompoundRate(last, first domain.Value, span int) domain.Value {
	if !first.Positive() || span < 1 {
		return domain.Null()
	}
	l, ok := last.Float64()
	if !ok {
		return domain.Null()
	}
	f, _ := first.Float64()
	return domain.Some((math.Pow(l/f, 1/float64(span)) - 1) * 100)
}

// byCity splits aggregates into per-city runs ordered by year, returned in
// city order.
func byCity(aggregates []domain.YearlyAggregate) [][]domain.YearlyAggregate {
	sorted := make([]domain.YearlyAggregate, len(aggregates))
	copy(sorted, aggregates)
	sortAggregates(sorted)

	var groups [][]domain.YearlyAggregate
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].City == sorted[i].City {
			j++
		}
		groups = append(groups, sorted[i:j])
		i = j
	}
	return groups
}

func sortAggregates(rows []domain.YearlyAggregate) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].City != rows[j].City {
			return rows[i].City < rows[j].City
		}
		return rows[i].Year < rows[j].Year
	})
}
