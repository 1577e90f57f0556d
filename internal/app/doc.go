// Package app wires the city growth server together.
//
// NewApplication resolves directories, sets up OpenTelemetry, builds the
// pipeline and the services over it, and mounts the JSON API. Start compiles
// the initial data set in the background and begins serving; Run blocks until
// SIGINT or SIGTERM and then shuts the server down gracefully.
//
// Middleware order is RequestID, RealIP, OTel, logger, recoverer, then
// security headers, CORS and rate limiting. /metrics is served from the
// Prometheus registry backing the OTel meter provider.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
