package types

import "errors"

// Sentinel kinds for time parsing errors.
var (
	ErrInvalidClock  = errors.New("invalid clock")
	ErrEmptyInterval = errors.New("empty interval")
)
