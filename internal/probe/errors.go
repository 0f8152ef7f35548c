package probe

import "errors"

// Sentinel errors for probe runs.
var (
	ErrUnhealthy          = errors.New("service unhealthy")
	ErrUnexpectedStatus   = errors.New("unexpected status")
	ErrVerificationFailed = errors.New("verification failed")
	ErrInvalidConfig      = errors.New("invalid probe config")
)
