// Package series defines the long-format OD table consumed by the growth
// engine and the per-group series derived from it.
//
// A plate-reader run is represented as one Observation per reading:
//
//	time, treatment, replicate, od
//	0,    A,         1,         0.10
//	1,    A,         1,         0.20
//
// Table.Groups splits the table into one Series per (treatment, replicate)
// GroupKey, ordered by treatment and then replicate. Series transformations
// (Clean, Positive, Clip, Sorted) return new values and never modify their
// receiver, so one table can be analyzed repeatedly with different settings.
//
// Missing readings are NaN. ReadCSV maps empty and NA cells to NaN; the
// growth package drops them per group.
package series
