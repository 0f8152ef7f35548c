package tables

import "errors"

// ErrMalformedTable reports a structurally invalid static table.
var ErrMalformedTable = errors.New("malformed static table")
