package itinerary

import "errors"

// ErrInvalidMaxPerDay is returned when the per-day bound is not positive.
var ErrInvalidMaxPerDay = errors.New("max per day must be positive")
