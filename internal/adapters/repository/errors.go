package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = errors.New("principal not on the leaderboard")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
