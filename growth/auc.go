package growth

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/odysseylab/odyssey/series"
)

// AUC is the area under the OD curve of one group.
type AUC struct {
	Key series.GroupKey
	// Value is the trapezoid-rule integral of OD over time; NaN with fewer
	// than two points.
	Value float64
	// N is the number of points integrated.
	N int
}

// ComputeAUC integrates OD over time for every group in tbl with the
// trapezoid rule.
//
// Missing readings are dropped and the points are sorted by time; non-positive
// OD values are kept. With WithTimeWindow only points inside the window are
// integrated. Rows are ordered by treatment, then replicate.
func ComputeAUC(tbl *series.Table, opts ...Option) ([]AUC, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	groups := tbl.Groups()
	out := make([]AUC, len(groups))
	for i, g := range groups {
		s := g.Series.Clean().Sorted()
		if cfg.TimeWindow != nil {
			s = s.Clip(*cfg.TimeWindow)
		}
		out[i] = AUC{Key: g.Key, Value: trapezoid(s), N: s.Len()}
	}

	return out, nil
}

func trapezoid(s series.Series) float64 {
	if s.Len() < 2 {
		return math.NaN()
	}

	return integrate.Trapezoidal(s.Time, s.OD)
}
