package window

import (
	"fmt"
	"math"

	"github.com/odysseylab/odyssey/internal/options"
)

// Default heuristic constants. They carry no derivation and are exposed as
// configurable defaults.
const (
	DefaultMinPoints     = 5
	DefaultSlopeWeight   = 0.02
	DefaultLengthWeight  = 0.01
	DefaultStartFraction = 0.35
	DefaultR2Min         = 0.99
	DefaultLOQK          = 2.0
	baselinePoints       = 3
)

// ScanConfig configures the window scan (Strategy A) and the exponential
// start detector.
type ScanConfig struct {
	// MinPoints is the minimum number of points of a candidate window.
	MinPoints int
	// MinSlope rejects candidates whose slope is not strictly greater.
	MinSlope float64
	// AnchorStart fixes every candidate window to begin at index 0.
	AnchorStart bool
	// SlopeWeight scales tanh(slope) in the candidate score.
	SlopeWeight float64
	// LengthWeight scales the window's fraction of the series in the score.
	LengthWeight float64
	// StartFraction is the share of the peak smoothed slope that marks the
	// exponential start.
	StartFraction float64
}

// DefaultScanConfig returns the scan configuration used when no options are given.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MinPoints:     DefaultMinPoints,
		MinSlope:      0,
		SlopeWeight:   DefaultSlopeWeight,
		LengthWeight:  DefaultLengthWeight,
		StartFraction: DefaultStartFraction,
	}
}

// ScanOption configures a ScanConfig.
type ScanOption = options.Option[*ScanConfig]

// WithMinPoints sets the minimum window size. n must be at least 2.
func WithMinPoints(n int) ScanOption {
	return options.New(func(c *ScanConfig) error {
		if n < 2 {
			return fmt.Errorf("%w: got %d", errInvalidMinPoints, n)
		}
		c.MinPoints = n

		return nil
	})
}

// WithMinSlope sets the slope a candidate must exceed.
func WithMinSlope(slope float64) ScanOption {
	return options.NoError(func(c *ScanConfig) {
		c.MinSlope = slope
	})
}

// WithAnchorStart restricts candidates to windows beginning at the first point.
func WithAnchorStart() ScanOption {
	return options.NoError(func(c *ScanConfig) {
		c.AnchorStart = true
	})
}

// WithScoreWeights overrides the slope and length weights of the candidate score.
func WithScoreWeights(slopeWeight, lengthWeight float64) ScanOption {
	return options.NoError(func(c *ScanConfig) {
		c.SlopeWeight = slopeWeight
		c.LengthWeight = lengthWeight
	})
}

// WithStartFraction sets the share of the peak smoothed slope that marks the
// exponential start.
func WithStartFraction(f float64) ScanOption {
	return options.New(func(c *ScanConfig) error {
		if !(f > 0 && f <= 1) {
			return fmt.Errorf("%w: got %v", errInvalidFraction, f)
		}
		c.StartFraction = f

		return nil
	})
}

// LOQConfig configures the LOQ-anchored forward search (Strategy B).
type LOQConfig struct {
	// ODMin and ODMax bound the raw OD of every point in an accepted window.
	ODMin, ODMax float64
	// MinPoints overrides the automatic minimum window size when positive.
	MinPoints int
	// R2Min is the lowest acceptable R².
	R2Min float64
	// K is the number of blank standard deviations above the blank mean that
	// defines the limit of quantification.
	K float64
}

// DefaultLOQConfig returns the LOQ configuration used when no options are given.
func DefaultLOQConfig() LOQConfig {
	return LOQConfig{
		ODMin: math.Inf(-1),
		ODMax: math.Inf(1),
		R2Min: DefaultR2Min,
		K:     DefaultLOQK,
	}
}

// LOQOption configures a LOQConfig.
type LOQOption = options.Option[*LOQConfig]

// WithODBounds restricts accepted windows to raw OD values within [minOD, maxOD].
// Use math.Inf to leave a side open.
func WithODBounds(minOD, maxOD float64) LOQOption {
	return options.New(func(c *LOQConfig) error {
		if math.IsNaN(minOD) || math.IsNaN(maxOD) || minOD > maxOD {
			return fmt.Errorf("%w: [%v, %v]", errInvalidODBounds, minOD, maxOD)
		}
		c.ODMin, c.ODMax = minOD, maxOD

		return nil
	})
}

// WithLOQMinPoints fixes the minimum window size. Zero restores the automatic
// size max(3, ceil(0.1·n)).
func WithLOQMinPoints(n int) LOQOption {
	return options.New(func(c *LOQConfig) error {
		if n != 0 && n < 2 {
			return fmt.Errorf("%w: got %d", errInvalidMinPoints, n)
		}
		c.MinPoints = n

		return nil
	})
}

// WithR2Min sets the lowest acceptable R².
func WithR2Min(r2 float64) LOQOption {
	return options.New(func(c *LOQConfig) error {
		if !(r2 >= 0 && r2 <= 1) {
			return fmt.Errorf("%w: got %v", errInvalidR2Threshold, r2)
		}
		c.R2Min = r2

		return nil
	})
}

// WithLOQK sets the blank standard-deviation multiplier of the LOQ.
func WithLOQK(k float64) LOQOption {
	return options.New(func(c *LOQConfig) error {
		if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
			return fmt.Errorf("%w: got %v", errInvalidLOQK, k)
		}
		c.K = k

		return nil
	})
}
