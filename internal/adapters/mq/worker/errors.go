package worker

import "errors"

// Sentinel kinds for pool errors.
var (
	ErrPoolClosed     = errors.New("worker pool closed")
	ErrPoolNotStarted = errors.New("worker pool not started")
)
