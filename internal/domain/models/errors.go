package models

import "errors"

// Error taxonomy. All failures inside the engine wrap one of these sentinels
// so callers can branch with errors.Is.
var (
	// ErrInsufficientHistory: too few candles for a requested window.
	// Degrade gracefully: skip the dependent computation, mark the field
	// unavailable, continue the run.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrSourceUnavailable: upstream candle/price fetch failed. The symbol is
	// skipped for this run; the previous snapshot stays "latest".
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDegenerateZone: a cluster collapsed to zero width or its buffer no
	// longer contains the core after clipping. The zone is dropped.
	ErrDegenerateZone = errors.New("degenerate zone")

	// ErrValidationFailure: a post-build invariant was violated. Publish is
	// aborted for that symbol only.
	ErrValidationFailure = errors.New("validation failure")
)
