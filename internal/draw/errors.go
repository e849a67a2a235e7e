package draw

import "errors"

var (
	// ErrStaleReference marks a draw-order id that no longer exists in the pools.
	// The machine skips such ids; the error never leaves the package except in logs.
	ErrStaleReference = errors.New("draw order references an unknown entrant")

	// ErrGridExhausted is returned by Place when the target column has no empty cell.
	ErrGridExhausted = errors.New("no empty cell left in target column")

	// ErrAlreadyPlaced is returned by Place when the entrant already occupies a cell.
	ErrAlreadyPlaced = errors.New("entrant already placed in grid")

	// ErrInvalidConfiguration wraps every configuration problem reported to callers.
	ErrInvalidConfiguration = errors.New("invalid draw configuration")

	// ErrCycleActive is returned by Start while a draw cycle is still running.
	ErrCycleActive = errors.New("draw cycle already active")

	// ErrNotAwaitingSignal is returned by PhaseFinished in phases that are not
	// waiting on the presentation layer.
	ErrNotAwaitingSignal = errors.New("no phase is waiting for a finish signal")
)
