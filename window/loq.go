package window

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/odysseylab/odyssey/internal/options"
	"github.com/odysseylab/odyssey/internal/pool"
	"github.com/odysseylab/odyssey/regression"
)

// Diagnostics records the baseline statistics behind a LOQ search.
type Diagnostics struct {
	// LOQ is the limit of quantification, BlankMean + K·BlankStd.
	LOQ       float64
	BlankMean float64
	BlankStd  float64
	// MinPoints is the effective minimum window size.
	MinPoints int
	R2Min     float64
}

// AutoWindow is the exponential-phase window found by DetectLOQ.
type AutoWindow struct {
	// StartIndex and EndIndex are inclusive indices into the caller's
	// original (unfiltered) arrays.
	StartIndex, EndIndex int
	// TStart and TEnd are the times at StartIndex and EndIndex.
	TStart, TEnd float64
	// Mu is the growth rate, the slope of ln(OD − BlankMean) against time.
	Mu        float64
	Intercept float64
	R2        float64
	// N is the number of points in the window.
	N int
	// DoublingTime is ln2/Mu.
	DoublingTime float64

	Diagnostics Diagnostics
}

// DetectLOQ finds the exponential phase anchored at the limit of
// quantification.
//
// Points with a non-finite time, a non-finite OD or OD <= 0 are dropped; the
// remaining points keep their order. The baseline is the first three finite
// positive values of blank, or the first three remaining OD values when blank
// is empty. The window always starts at the first point whose OD reaches
// LOQ = mean + K·std of the baseline. Its end contracts from the last point
// towards the start and the first end that passes every gate wins:
//
//   - all raw OD values lie within [ODMin, ODMax]
//   - all baseline-subtracted values are positive
//   - the slope of ln(OD − mean) is positive and R² >= R2Min
//   - for three or more points, the last two OD increments are positive and
//     increasing
//
// Because the end contracts from the tail, the most recent qualifying phase
// is preferred.
//
// Parameters:
//   - t: Time values, ascending
//   - od: Raw OD values, same length as t
//   - blank: Optional blank readings; nil or empty uses the OD baseline
//   - opts: LOQ options (WithODBounds, WithLOQMinPoints, WithR2Min, WithLOQK)
//
// Returns:
//   - *AutoWindow: The selected window
//   - error: One of the LOQ sentinel errors (ErrNoValidPoints, ...) or an
//     option error
func DetectLOQ(t, od, blank []float64, opts ...LOQOption) (*AutoWindow, error) {
	cfg := DefaultLOQConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	n := min(len(t), len(od))
	vt := make([]float64, 0, n)
	vod := make([]float64, 0, n)
	orig := make([]int, 0, n)
	for i := range n {
		if isFinite(t[i]) && isFinite(od[i]) && od[i] > 0 {
			vt = append(vt, t[i])
			vod = append(vod, od[i])
			orig = append(orig, i)
		}
	}
	if len(vod) == 0 {
		return nil, ErrNoValidPoints
	}

	baseline := baselineValues(vod, blank)
	if len(baseline) < 2 {
		return nil, ErrNotEnoughBaseline
	}
	mean, std := stat.MeanStdDev(baseline, nil)
	loq := mean + cfg.K*std

	nMin := -1
	for i, v := range vod {
		if v >= loq {
			nMin = i
			break
		}
	}
	if nMin < 0 {
		return nil, ErrNoPointsAboveLOQ
	}

	nValid := len(vod)
	logSub, cleanup := pool.GetFloat64Slice(nValid)
	defer cleanup()

	positive := 0
	for i, v := range vod {
		sub := v - mean
		if sub > 0 {
			positive++
			logSub[i] = math.Log(sub)
		} else {
			logSub[i] = math.NaN()
		}
	}
	if positive < baselinePoints {
		return nil, ErrNotEnoughPositive
	}

	minPoints := cfg.MinPoints
	if minPoints == 0 {
		minPoints = max(baselinePoints, int(math.Ceil(0.1*float64(nValid))))
	}
	if nValid-nMin < minPoints {
		return nil, ErrNotEnoughAboveLOQ
	}

	diag := Diagnostics{
		LOQ:       loq,
		BlankMean: mean,
		BlankStd:  std,
		MinPoints: minPoints,
		R2Min:     cfg.R2Min,
	}

	for end := nValid - 1; end-nMin+1 >= minPoints; end-- {
		if !withinBounds(vod[nMin:end+1], cfg.ODMin, cfg.ODMax) {
			continue
		}
		if !allFinite(logSub[nMin : end+1]) {
			continue
		}

		fit := regression.FitLinear(vt[nMin:end+1], logSub[nMin:end+1])
		if !(fit.Slope > 0) || math.IsNaN(fit.RSquared) || fit.RSquared < cfg.R2Min {
			continue
		}
		if end-nMin+1 >= 3 && !accelerating(vod[end-2], vod[end-1], vod[end]) {
			continue
		}

		return &AutoWindow{
			StartIndex:   orig[nMin],
			EndIndex:     orig[end],
			TStart:       vt[nMin],
			TEnd:         vt[end],
			Mu:           fit.Slope,
			Intercept:    fit.Intercept,
			R2:           fit.RSquared,
			N:            fit.N,
			DoublingTime: fit.DoublingTime(),
			Diagnostics:  diag,
		}, nil
	}

	return nil, ErrNoWindowAfterLOQ
}

// baselineValues returns the first baselinePoints finite positive blank
// readings, or the first baselinePoints filtered OD values without blanks.
func baselineValues(vod, blank []float64) []float64 {
	if len(blank) == 0 {
		return vod[:min(baselinePoints, len(vod))]
	}

	out := make([]float64, 0, baselinePoints)
	for _, b := range blank {
		if isFinite(b) && b > 0 {
			out = append(out, b)
			if len(out) == baselinePoints {
				break
			}
		}
	}

	return out
}

func withinBounds(v []float64, lo, hi float64) bool {
	for _, x := range v {
		if x < lo || x > hi {
			return false
		}
	}

	return true
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if !isFinite(x) {
			return false
		}
	}

	return true
}

// accelerating reports whether the increments a→b and b→c are both positive
// and the later one is larger.
func accelerating(a, b, c float64) bool {
	d0 := b - a
	d1 := c - b

	return d0 > 0 && d1 > 0 && d1 > d0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
