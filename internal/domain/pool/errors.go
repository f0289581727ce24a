package pool

import "errors"

// Sentinel kinds for pool errors.
var (
	ErrInsufficientBalance = errors.New("insufficient pool balance")
)
