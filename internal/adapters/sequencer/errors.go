package sequencer

import "errors"

// Sentinel kinds for sequencer errors.
var (
	ErrBackpressure = errors.New("command queue full")
	ErrStopped      = errors.New("sequencer stopped")
	ErrDrainTimeout = errors.New("sequencer drain timed out")
)
