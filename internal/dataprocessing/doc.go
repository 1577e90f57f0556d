// Package dataprocessing reads the four statistics-office sources and joins
// them into one record per city and quarter.
//
// # Sources
//
// The employment, salary and population files are HTML tables saved with an
// .xls extension in ISO-8859-1. ParseTabular reads them with
// golang.org/x/net/html: the second and third rows carry the years and
// quarters, every later row is a city followed by one value per quarter.
// Rows whose width does not match the header are dropped.
//
// The housing index is a semicolon-separated CSV, also Latin-1. ParseHousing
// maps metropolitan-zone identifiers to city names with NormalizeHousingCity.
//
// # Cells
//
// ParseCell accepts comma decimals. "No aplica", empty cells and anything
// that does not parse become null; a bad cell never fails a file.
//
// # Join
//
// Reconcile builds the city universe from the three tabular sources, takes
// the employment time points as canonical and derives monthly salary and
// real wage. Output is sorted by city and then by time point:
//
//	Employment ┐
//	Salary     ├─ Reconcile → []UnifiedRecord
//	Population │
//	Housing    ┘
//
// Loader wraps the file parsers with logging and turns open or decode
// failures into SOURCE_UNAVAILABLE application errors carrying the path.
package dataprocessing
