package series

import (
	"fmt"
	"math"
	"sort"
)

// Observation is one row of the long-format table: a single OD reading of
// one well at one time point.
type Observation struct {
	Time      float64
	Treatment string
	Replicate int
	OD        float64
}

// GroupKey identifies one replicate series within a table.
type GroupKey struct {
	Treatment string
	Replicate int
}

// String returns "treatment/replicate".
func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%d", k.Treatment, k.Replicate)
}

// Compare orders keys by treatment, then replicate.
func (k GroupKey) Compare(o GroupKey) int {
	switch {
	case k.Treatment < o.Treatment:
		return -1
	case k.Treatment > o.Treatment:
		return 1
	case k.Replicate < o.Replicate:
		return -1
	case k.Replicate > o.Replicate:
		return 1
	default:
		return 0
	}
}

// TimeWindow is an inclusive [Start, End] time interval.
type TimeWindow struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Contains reports whether t lies inside the window.
func (w TimeWindow) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// Validate rejects non-finite or inverted windows.
func (w TimeWindow) Validate() error {
	if math.IsNaN(w.Start) || math.IsNaN(w.End) || math.IsInf(w.Start, 0) || math.IsInf(w.End, 0) {
		return fmt.Errorf("time window [%v, %v] must be finite", w.Start, w.End)
	}
	if w.Start > w.End {
		return fmt.Errorf("time window start %v is after end %v", w.Start, w.End)
	}

	return nil
}

// Series holds parallel time and OD values for one group.
//
// Methods never modify the receiver; each transformation returns a new Series.
type Series struct {
	Time []float64
	OD   []float64
}

// NewSeries copies time and od into a new Series. The shorter length wins.
func NewSeries(time, od []float64) Series {
	n := min(len(time), len(od))
	s := Series{Time: make([]float64, n), OD: make([]float64, n)}
	copy(s.Time, time[:n])
	copy(s.OD, od[:n])

	return s
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Time)
}

// filter returns the points for which keep returns true.
func (s Series) filter(keep func(t, od float64) bool) Series {
	out := Series{Time: make([]float64, 0, len(s.Time)), OD: make([]float64, 0, len(s.OD))}
	for i, t := range s.Time {
		if keep(t, s.OD[i]) {
			out.Time = append(out.Time, t)
			out.OD = append(out.OD, s.OD[i])
		}
	}

	return out
}

// Clean drops points whose time or OD is missing (NaN) or infinite.
func (s Series) Clean() Series {
	return s.filter(func(t, od float64) bool {
		return isFinite(t) && isFinite(od)
	})
}

// Positive drops points with OD <= 0, which cannot enter a log-domain fit.
func (s Series) Positive() Series {
	return s.filter(func(_, od float64) bool { return od > 0 })
}

// Clip keeps the points whose time lies inside w.
func (s Series) Clip(w TimeWindow) Series {
	return s.filter(func(t, _ float64) bool { return w.Contains(t) })
}

// Sorted returns the series ordered by ascending time. Ties keep their order.
func (s Series) Sorted() Series {
	idx := make([]int, len(s.Time))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return s.Time[idx[a]] < s.Time[idx[b]] })

	out := Series{Time: make([]float64, len(idx)), OD: make([]float64, len(idx))}
	for i, j := range idx {
		out.Time[i] = s.Time[j]
		out.OD[i] = s.OD[j]
	}

	return out
}

// LogOD returns ln(OD) for every point.
func (s Series) LogOD() []float64 {
	out := make([]float64, len(s.OD))
	for i, v := range s.OD {
		out[i] = math.Log(v)
	}

	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
