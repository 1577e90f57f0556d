package services

import "errors"

// Analysis service errors
var (
	ErrDataNotReady = errors.New("city data not compiled yet")
	ErrCityNotFound = errors.New("city not found")
)
