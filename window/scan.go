package window

import (
	"fmt"
	"math"

	"github.com/odysseylab/odyssey/internal/options"
	"github.com/odysseylab/odyssey/regression"
)

// Window is a contiguous run of points selected for a log-linear fit.
type Window struct {
	regression.LinearFit

	// Score is the heuristic score that selected the window.
	Score float64
	// Start and End delimit the window as the half-open index range
	// [Start, End) of the scanned slices.
	Start, End int
	// TMin and TMax are the first and last x values inside the window.
	TMin, TMax float64
}

// Len returns the number of points in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// BestWindow scans every contiguous window of x and y and returns the one with
// the highest score
//
//	R² + SlopeWeight·tanh(slope) + LengthWeight·(len/total)
//
// among candidates with at least MinPoints points, slope > MinSlope and a
// defined R². With WithAnchorStart every candidate begins at index 0.
//
// Candidates are visited in ascending start, then ascending end order and a
// candidate replaces the current best only when its score is strictly
// greater, so the earliest candidate wins ties.
//
// The scan fits O(n²) windows of O(n) points each, O(n³) overall. It is meant
// for per-well series of tens to a few hundred points.
//
// Parameters:
//   - x: Time values, ascending
//   - y: Fitted values, typically ln(OD)
//   - opts: Scan options (WithMinPoints, WithMinSlope, WithAnchorStart, WithScoreWeights)
//
// Returns:
//   - Window: The best window; indices refer to x and y
//   - error: ErrNoCandidate when no window qualifies, or an option error
func BestWindow(x, y []float64, opts ...ScanOption) (Window, error) {
	cfg := DefaultScanConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Window{}, err
	}

	return scan(x, y, &cfg)
}

func scan(x, y []float64, cfg *ScanConfig) (Window, error) {
	n := len(x)
	if n != len(y) {
		return Window{}, fmt.Errorf("%w: %d vs %d", ErrMismatchedLengths, n, len(y))
	}

	lastStart := n - cfg.MinPoints
	if cfg.AnchorStart && lastStart > 0 {
		lastStart = 0
	}

	var best Window
	bestScore := math.Inf(-1)
	found := false

	for i := 0; i <= lastStart; i++ {
		for j := i + cfg.MinPoints; j <= n; j++ {
			fit := regression.FitLinear(x[i:j], y[i:j])
			if !(fit.Slope > cfg.MinSlope) || math.IsNaN(fit.RSquared) {
				continue
			}

			score := fit.RSquared +
				cfg.SlopeWeight*math.Tanh(fit.Slope) +
				cfg.LengthWeight*float64(j-i)/float64(n)
			if score > bestScore {
				bestScore = score
				best = Window{
					LinearFit: fit,
					Score:     score,
					Start:     i,
					End:       j,
					TMin:      x[i],
					TMax:      x[j-1],
				}
				found = true
			}
		}
	}

	if !found {
		return Window{}, ErrNoCandidate
	}

	return best, nil
}
