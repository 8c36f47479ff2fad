package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrSchema = errors.New("roster does not match schema")
	ErrFormat = errors.New("unsupported roster format")
)
