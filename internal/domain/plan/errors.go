package plan

import "errors"

// Sentinel kinds for plan validation errors.
var (
	ErrInvalidAmount   = errors.New("amount does not match any tier denomination")
	ErrInvalidGoalType = errors.New("tier and goal type are not a whitelisted combination")
)
