// Package api contains the JSON API contract for the city growth server.
// Version v1 represents the current stable API version.
package api

// CityRequest filters records or growth rows by city. An empty city selects
// every city.
type CityRequest struct {
	City string `json:"city,omitempty" query:"city"`
}

// CAGRRequest is the window for compound growth queries. Both bounds are
// inclusive calendar years and End may equal Start.
type CAGRRequest struct {
	Start int `json:"start" query:"start" validate:"year"`
	End   int `json:"end" query:"end" validate:"year,gtefield=Start"`
}
