// Package growth derives yearly aggregates, year-over-year growth and
// compound annual growth rates from reconciled quarterly city records.
//
// All arithmetic is null-aware: a null input, a missing or non-positive base,
// or an undefined power yields a null result rather than zero or NaN.
//
// # Formulas
//
//	yearly mean   = mean of the non-null quarterly values
//	growth %      = ((curr / prev) - 1) × 100
//	CAGR %        = ((last / first) ^ (1 / span) - 1) × 100
//	span          = max(endYear - startYear, 1)
//
// # Usage
//
//	tables := growth.Compute(records, growth.DefaultStartYear, growth.DefaultEndYear)
//	for _, g := range tables.Growth {
//	    fmt.Println(g.City, g.Year, g.PopulationGrowth)
//	}
package growth
