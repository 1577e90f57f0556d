// Package http exposes compiled city data as a read-only JSON API.
//
// Handlers are thin: they parse and validate query parameters, call the
// analysis service and render the result. Successful responses share one
// envelope:
//
//	{"status": "success", "data": ..., "count": n}
//
// Errors are RFC 7807 problem documents produced by errors.ErrorHandler.
// Service sentinels are mapped to API errors here so the services package
// stays free of HTTP concerns.
package http
