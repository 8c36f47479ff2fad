package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidXP    = errors.New("invalid xp amount")
	ErrDuplicate    = errors.New("already exists")
)
