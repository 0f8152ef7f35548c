package repository

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound        = errors.New("festival not found")
	ErrInvalidFestival = errors.New("invalid festival")
	ErrCatalogFull     = errors.New("festival catalog full")
	ErrMalformedFile   = errors.New("malformed catalog file")
)
