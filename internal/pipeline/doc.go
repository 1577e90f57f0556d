// Package pipeline runs the city growth compilation end to end.
//
// A run has four stages executed in order:
//
//	parse      read the three tabular exports and the housing CSV concurrently
//	join       reconcile the sources into one record per city and time point
//	aggregate  reduce quarterly records to yearly means
//	derive     year-over-year growth and windowed CAGR
//
// Each stage records a StepState with its timing and row counts. A failing
// stage aborts the run with a *StageError naming the stage; later stages are
// marked skipped and no partial Result is returned.
package pipeline
