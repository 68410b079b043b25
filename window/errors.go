package window

import "errors"

// Strategy A and start detection errors.
var (
	// ErrNoCandidate indicates that no window satisfies the scan constraints.
	ErrNoCandidate = errors.New("no window satisfies the scan constraints")
	// ErrNoStart indicates that the series has no detectable exponential start.
	ErrNoStart = errors.New("no exponential start found")
)

// LOQ search errors. The messages double as the per-group failure reason
// reported by the growth estimator.
var (
	ErrNoValidPoints      = errors.New("no valid points")
	ErrNotEnoughBaseline  = errors.New("not enough baseline points")
	ErrNoPointsAboveLOQ   = errors.New("no points exceed LOQ threshold")
	ErrNotEnoughPositive  = errors.New("not enough positive points after baseline subtraction")
	ErrNotEnoughAboveLOQ  = errors.New("not enough points above LOQ threshold")
	ErrNoWindowAfterLOQ   = errors.New("no valid window found after LOQ search")
	ErrMismatchedLengths  = errors.New("time and value slices differ in length")
	errInvalidMinPoints   = errors.New("min points must be at least 2")
	errInvalidFraction    = errors.New("start fraction must be in (0, 1]")
	errInvalidODBounds    = errors.New("od bounds must satisfy min <= max")
	errInvalidR2Threshold = errors.New("r2 threshold must be in [0, 1]")
	errInvalidLOQK        = errors.New("loq k must be finite and non-negative")
)
