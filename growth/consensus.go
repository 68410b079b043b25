package growth

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/odysseylab/odyssey/regression"
	"github.com/odysseylab/odyssey/series"
	"github.com/odysseylab/odyssey/window"
)

// TreatmentR2 is the log-linear R² of all replicates of one treatment pooled.
type TreatmentR2 struct {
	Treatment string
	R2        float64
	N         int
}

// WindowR2ByTreatment fits ln(OD) against time over the pooled replicates of
// each treatment and reports R². It measures how well a shared window suits
// every replicate. A nil tw uses every point.
//
// Treatments with fewer than two usable points get NaN.
func WindowR2ByTreatment(tbl *series.Table, tw *series.TimeWindow) []TreatmentR2 {
	pooled := tbl.ByTreatment()
	out := make([]TreatmentR2, len(pooled))
	for i, p := range pooled {
		s := p.Series.Clean().Positive()
		if tw != nil {
			s = s.Clip(*tw)
		}

		r2 := math.NaN()
		if s.Len() >= 2 {
			r2 = regression.FitExponential(s.Time, s.OD).RSquared
		}
		out[i] = TreatmentR2{Treatment: p.Treatment, R2: r2, N: s.Len()}
	}

	return out
}

// ConsensusWindow suggests one time window for the whole table.
//
// For each treatment, the pooled and sorted ln(OD) series is passed to
// window.SeededWindow; treatments with fewer than minPoints usable points
// are skipped. The consensus is the median start and the median end of the
// selected windows.
//
// Returns:
//   - series.TimeWindow: Median start and end times
//   - error: window.ErrNoCandidate when no treatment yields a window
func ConsensusWindow(tbl *series.Table, minPoints int) (series.TimeWindow, error) {
	if minPoints < 2 {
		return series.TimeWindow{}, fmt.Errorf("%w: min points %d, need at least 2", ErrInvalidConfig, minPoints)
	}

	var starts, ends []float64
	for _, p := range tbl.ByTreatment() {
		s := p.Series.Clean().Positive().Sorted()
		if s.Len() < minPoints {
			continue
		}

		w, err := window.SeededWindow(s.Time, s.LogOD(), window.WithMinPoints(minPoints))
		if err != nil {
			continue
		}
		starts = append(starts, w.TMin)
		ends = append(ends, w.TMax)
	}

	if len(starts) == 0 {
		return series.TimeWindow{}, window.ErrNoCandidate
	}

	start, err := stats.Median(starts)
	if err != nil {
		return series.TimeWindow{}, fmt.Errorf("median window start: %w", err)
	}
	end, err := stats.Median(ends)
	if err != nil {
		return series.TimeWindow{}, fmt.Errorf("median window end: %w", err)
	}

	return series.TimeWindow{Start: start, End: end}, nil
}
