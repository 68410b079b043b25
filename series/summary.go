package series

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TimePointSummary is the across-replicate mean and spread of one treatment
// at one time point.
type TimePointSummary struct {
	Treatment string
	Time      float64
	Mean      float64
	// SD is the sample standard deviation (n-1 denominator); NaN for one replicate.
	SD float64
	N  int
}

// MeanSD summarizes OD per (treatment, time) across replicates.
//
// Missing readings are skipped. Rows are ordered by treatment, then time.
func MeanSD(t *Table) []TimePointSummary {
	type cellKey struct {
		treatment string
		time      float64
	}

	cells := make(map[cellKey][]float64)
	var keys []cellKey
	for _, row := range t.Rows {
		if !isFinite(row.Time) || !isFinite(row.OD) {
			continue
		}
		k := cellKey{treatment: row.Treatment, time: row.Time}
		if _, ok := cells[k]; !ok {
			keys = append(keys, k)
		}
		cells[k] = append(cells[k], row.OD)
	}

	sort.Slice(keys, func(a, b int) bool {
		if keys[a].treatment != keys[b].treatment {
			return keys[a].treatment < keys[b].treatment
		}

		return keys[a].time < keys[b].time
	})

	out := make([]TimePointSummary, 0, len(keys))
	for _, k := range keys {
		values := cells[k]
		mean, sd := stat.MeanStdDev(values, nil)
		out = append(out, TimePointSummary{
			Treatment: k.treatment,
			Time:      k.time,
			Mean:      mean,
			SD:        sd,
			N:         len(values),
		})
	}

	return out
}
