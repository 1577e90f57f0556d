package exporter

import (
	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	"github.com/andresfortunato/mexico-city-growth-tool/pkg/contracts/domain"
)

// Table is a named, rectangular set of rows ready for export. Cells hold a
// string, an int or a domain.Value.
type Table struct {
	Name    string
	File    string
	Headers []string
	Rows    [][]any
}

// Column layouts of the three exported tables.
var (
	RecordsHeaders = []string{
		"city", "time_point", "year", "quarter",
		"employment_rate", "hourly_salary", "population", "housing_index",
		"monthly_salary", "real_wage",
	}
	GrowthHeaders = []string{
		"city", "year",
		"avg_employment_rate", "avg_monthly_salary", "avg_real_wage",
		"avg_population", "avg_housing_index",
		"population_growth", "real_wage_growth", "nominal_wage_growth",
	}
	CAGRHeaders = []string{
		"city", "start_year", "end_year", "years",
		"population_cagr", "real_wage_cagr", "nominal_wage_cagr",
		"first_year", "last_year",
	}
)

// RecordsTable lays out the unified city records.
func RecordsTable(records []domain.UnifiedRecord) Table {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.City, string(r.TimePoint), r.Year, r.Quarter,
			r.EmploymentRate, r.HourlySalary, r.Population, r.HousingIndex,
			r.MonthlySalary, r.RealWage,
		})
	}
	return Table{Name: "city_data", File: config.CompiledDataCSV, Headers: RecordsHeaders, Rows: rows}
}

// GrowthTable lays out the yearly averages with their year-over-year growth.
func GrowthTable(growth []domain.GrowthRecord) Table {
	rows := make([][]any, 0, len(growth))
	for _, g := range growth {
		rows = append(rows, []any{
			g.City, g.Year,
			g.EmploymentRate, g.MonthlySalary, g.RealWage,
			g.Population, g.HousingIndex,
			g.PopulationGrowth, g.RealWageGrowth, g.NominalWageGrowth,
		})
	}
	return Table{Name: "yearly_growth", File: config.YearlyGrowthCSV, Headers: GrowthHeaders, Rows: rows}
}

// CAGRTable lays out the compound annual growth rates.
func CAGRTable(cagr []domain.CAGRRecord) Table {
	rows := make([][]any, 0, len(cagr))
	for _, c := range cagr {
		rows = append(rows, []any{
			c.City, c.StartYear, c.EndYear, c.Span,
			c.PopulationCAGR, c.RealWageCAGR, c.NominalWageCAGR,
			c.FirstYear, c.LastYear,
		})
	}
	return Table{Name: "cagr", File: config.CAGRDataCSV, Headers: CAGRHeaders, Rows: rows}
}

// Tables returns the three export tables in output order.
func Tables(records []domain.UnifiedRecord, growth []domain.GrowthRecord, cagr []domain.CAGRRecord) []Table {
	return []Table{RecordsTable(records), GrowthTable(growth), CAGRTable(cagr)}
}

// StringRows renders the first n rows as text; n < 0 renders all of them.
func (t Table) StringRows(n int) [][]string {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = make([]string, len(t.Rows[i]))
		for j, c := range t.Rows[i] {
			out[i][j] = formatCell(c)
		}
	}
	return out
}
