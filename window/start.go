package window

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/odysseylab/odyssey/internal/options"
)

const minStartPoints = 4

// DetectExponentialStart locates the first index where growth accelerates.
//
// It computes the consecutive slopes dy/dx (zero where dx <= 0), smooths them
// with a centered length-3 moving average that treats the positions beyond
// either edge as zero, and returns the first index whose smoothed slope
// reaches StartFraction (default 0.35) of the peak smoothed slope.
//
// Parameters:
//   - x: Time values, ascending
//   - y: Fitted values, typically ln(OD)
//   - opts: Scan options; only WithStartFraction is consulted
//
// Returns:
//   - int: Index into x of the exponential start
//   - error: ErrNoStart for fewer than 4 points, no positive peak or a
//     non-finite peak; ErrMismatchedLengths; or an option error
func DetectExponentialStart(x, y []float64, opts ...ScanOption) (int, error) {
	cfg := DefaultScanConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return 0, err
	}

	return detectStart(x, y, cfg.StartFraction)
}

func detectStart(x, y []float64, fraction float64) (int, error) {
	n := len(x)
	if n != len(y) {
		return 0, ErrMismatchedLengths
	}
	if n < minStartPoints {
		return 0, ErrNoStart
	}

	slopes := make([]float64, n-1)
	for i := range slopes {
		dx := x[i+1] - x[i]
		if dx > 0 {
			slopes[i] = (y[i+1] - y[i]) / dx
		}
	}

	smoothed := movingAverage3(slopes)
	peak := floats.Max(smoothed)
	if math.IsNaN(peak) || math.IsInf(peak, 0) || peak <= 0 {
		return 0, ErrNoStart
	}

	threshold := fraction * peak
	for i, v := range smoothed {
		if v >= threshold {
			return i, nil
		}
	}

	return 0, ErrNoStart
}

// movingAverage3 returns the centered 3-point average of v with the same
// length as v. Values outside v count as zero.
func movingAverage3(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		sum := v[i]
		if i > 0 {
			sum += v[i-1]
		}
		if i+1 < len(v) {
			sum += v[i+1]
		}
		out[i] = sum
	}
	floats.Scale(1.0/3.0, out)

	return out
}

// SeededWindow runs an anchored BestWindow scan starting at the detected
// exponential start.
//
// When DetectExponentialStart finds a start and at least MinPoints points
// remain from it, the scan covers only that tail and the returned indices are
// rebased onto x. Otherwise the anchored scan covers the whole series.
//
// Returns:
//   - Window: The selected window; indices refer to x and y
//   - error: ErrNoCandidate when no window qualifies, or an option error
func SeededWindow(x, y []float64, opts ...ScanOption) (Window, error) {
	cfg := DefaultScanConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Window{}, err
	}
	cfg.AnchorStart = true

	start, err := detectStart(x, y, cfg.StartFraction)
	if err != nil || len(x)-start < cfg.MinPoints {
		return scan(x, y, &cfg)
	}

	w, err := scan(x[start:], y[start:], &cfg)
	if err != nil {
		return Window{}, err
	}
	w.Start += start
	w.End += start

	return w, nil
}
