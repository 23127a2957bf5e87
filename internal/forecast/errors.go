package forecast

import "errors"

// Typed failures for the analytics core. Callers distinguish "not enough
// history yet" (retry after more data arrives) from programmer error; the
// boundary layer translates these into user-facing responses. The core never
// logs or swallows its own errors.
var (
	// ErrEmptySeries is returned for zero-length input, checked before the
	// minimum-length gate since baseline computation has no defined value on
	// an empty series.
	ErrEmptySeries = errors.New("forecast: empty series")

	// ErrInsufficientData is returned when the series is shorter than the
	// algorithm's minimum of 5 points.
	ErrInsufficientData = errors.New("forecast: insufficient data (minimum 5 points required)")

	// ErrInvalidScenario is returned for an unrecognized scenario name.
	ErrInvalidScenario = errors.New("forecast: invalid scenario")

	// ErrInvalidRange marks horizon or lookback values outside allowed
	// bounds. Enforced by the boundary layer, not the core algorithms.
	ErrInvalidRange = errors.New("forecast: value out of range")
)
