package archive

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrUnsupportedDSN = errors.New("unsupported archive dsn")
	ErrNotFound       = errors.New("archive record not found")
)
