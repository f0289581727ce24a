package governance

import "errors"

// Sentinel kinds for governance errors.
var (
	ErrNotAdmin          = errors.New("caller is not an admin")
	ErrInvalidActionType = errors.New("action kind is not whitelisted")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalExpired   = errors.New("proposal approval window has expired")
	ErrAlreadyApproved   = errors.New("caller already approved this proposal")
	ErrAlreadyExecuted   = errors.New("proposal already executed")
	ErrRateAboveCap      = errors.New("adjusted rate exceeds the bonus-rate cap")
)
