package service

import "errors"

// Service errors.
var (
	// ErrNotAuthorized is returned when the caller does not own the stake
	// it is trying to act on.
	ErrNotAuthorized = errors.New("caller is not the stake owner")

	// ErrStakeNotFound is returned when no stake exists for the given id.
	ErrStakeNotFound = errors.New("stake not found")

	// ErrAlreadySettled is returned when acting on a stake that has already
	// reached a terminal state.
	ErrAlreadySettled = errors.New("stake already settled")

	// ErrStillLocked is returned when claiming before the lock expires.
	ErrStillLocked = errors.New("stake lock has not expired")

	// ErrAlreadyMarked is returned when a term has already been marked
	// learned for the stake.
	ErrAlreadyMarked = errors.New("term already marked for this stake")

	// ErrTermNotFound is returned for a term id outside the dictionary.
	ErrTermNotFound = errors.New("term not in the dictionary")

	// ErrNotStarted is returned when an operation requires a started service.
	ErrNotStarted = errors.New("service not started")
)
