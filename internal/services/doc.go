// Package services holds the state behind the HTTP API.
//
// AnalysisService keeps the most recent pipeline Result in memory and answers
// read queries from it. Refresh re-runs the pipeline; concurrent refresh calls
// share a single run, and a failed run leaves the previous data in place.
//
// HealthService reports liveness, whether compiled data is available, and
// whether the configured source files are present.
package services
