package service

import "errors"

// Sentinel errors for the application service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrInvalidInput = errors.New("invalid input")
)
