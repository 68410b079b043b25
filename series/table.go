package series

import (
	"slices"
	"sort"
)

// Table is a long-format OD table: one Observation per (time, treatment,
// replicate) reading.
type Table struct {
	Rows []Observation
}

// NewTable creates a table over a copy of rows.
func NewTable(rows []Observation) *Table {
	return &Table{Rows: slices.Clone(rows)}
}

// Len returns the number of observations.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// Group is the raw (unfiltered, unsorted) series of one replicate.
type Group struct {
	Key    GroupKey
	Series Series
}

// Groups splits the table by (treatment, replicate).
//
// Groups are ordered by treatment, then replicate. Within a group the points
// keep their table order; callers sort and clean as needed.
func (t *Table) Groups() []Group {
	if t.Len() == 0 {
		return nil
	}

	index := make(map[GroupKey]int)
	var groups []Group
	for _, row := range t.Rows {
		key := GroupKey{Treatment: row.Treatment, Replicate: row.Replicate}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Series.Time = append(groups[i].Series.Time, row.Time)
		groups[i].Series.OD = append(groups[i].Series.OD, row.OD)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Key.Compare(groups[b].Key) < 0
	})

	return groups
}

// Keys returns the distinct group keys in group order.
func (t *Table) Keys() []GroupKey {
	groups := t.Groups()
	keys := make([]GroupKey, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}

	return keys
}

// TreatmentSeries is the pooled series of every replicate of one treatment.
type TreatmentSeries struct {
	Treatment string
	Series    Series
}

// ByTreatment pools all replicates of each treatment into one series,
// ordered by treatment name.
func (t *Table) ByTreatment() []TreatmentSeries {
	if t.Len() == 0 {
		return nil
	}

	index := make(map[string]int)
	var out []TreatmentSeries
	for _, row := range t.Rows {
		i, ok := index[row.Treatment]
		if !ok {
			i = len(out)
			index[row.Treatment] = i
			out = append(out, TreatmentSeries{Treatment: row.Treatment})
		}
		out[i].Series.Time = append(out[i].Series.Time, row.Time)
		out[i].Series.OD = append(out[i].Series.OD, row.OD)
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Treatment < out[b].Treatment })

	return out
}

// Treatments returns the distinct treatment names in sorted order.
func (t *Table) Treatments() []string {
	pooled := t.ByTreatment()
	names := make([]string, len(pooled))
	for i, p := range pooled {
		names[i] = p.Treatment
	}

	return names
}
