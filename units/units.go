// Package units rescales growth results between minute and hour time bases.
//
// Growth rates are per time unit, so they scale opposite to durations and
// AUC values (OD·time):
//
//	units.ConvertGrowthRate(0.01, units.Minutes, units.Hours) // 0.6 per hour
//	units.ConvertDuration(90, units.Minutes, units.Hours)     // 1.5 hours
//
// Pairs other than minutes and hours pass values through unchanged.
package units

import (
	"fmt"
	"strings"

	"github.com/odysseylab/odyssey/growth"
)

// TimeUnit is the unit of the time column of an analysis.
type TimeUnit uint8

const (
	Minutes TimeUnit = iota
	Hours
	// HHMMSS is clock-formatted time, which is converted to minutes on
	// ingestion.
	HHMMSS
)

const minutesPerHour = 60.0

// String returns the unit name used in exports.
func (u TimeUnit) String() string {
	switch u {
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	case HHMMSS:
		return "hh:mm:ss"
	default:
		return fmt.Sprintf("TimeUnit(%d)", u)
	}
}

// Base returns the numeric unit values are expressed in.
func (u TimeUnit) Base() TimeUnit {
	if u == HHMMSS {
		return Minutes
	}

	return u
}

// ParseTimeUnit parses "minutes", "hours" or "hh:mm:ss", case-insensitively.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minutes", "min", "m":
		return Minutes, nil
	case "hours", "hour", "h":
		return Hours, nil
	case "hh:mm:ss":
		return HHMMSS, nil
	default:
		return 0, fmt.Errorf("unknown time unit %q", s)
	}
}

// durationFactor is the multiplier that turns a duration in from into one in to.
func durationFactor(from, to TimeUnit) float64 {
	from, to = from.Base(), to.Base()
	switch {
	case from == Minutes && to == Hours:
		return 1 / minutesPerHour
	case from == Hours && to == Minutes:
		return minutesPerHour
	default:
		return 1
	}
}

// ConvertGrowthRate converts a rate per from-unit into a rate per to-unit.
func ConvertGrowthRate(mu float64, from, to TimeUnit) float64 {
	return mu / durationFactor(from, to)
}

// ConvertDuration converts a duration such as a doubling time or window bound.
func ConvertDuration(d float64, from, to TimeUnit) float64 {
	return d * durationFactor(from, to)
}

// ConvertAUC converts an OD·time area.
func ConvertAUC(auc float64, from, to TimeUnit) float64 {
	return auc * durationFactor(from, to)
}

// ConvertResults returns copies of results with growth rates, doubling times
// and window bounds expressed in to. The intercept is unchanged by a time
// rescale.
func ConvertResults(results []growth.Result, from, to TimeUnit) []growth.Result {
	out := make([]growth.Result, len(results))
	for i, r := range results {
		r.Mu = ConvertGrowthRate(r.Mu, from, to)
		r.DoublingTime = ConvertDuration(r.DoublingTime, from, to)
		r.WindowStart = ConvertDuration(r.WindowStart, from, to)
		r.WindowEnd = ConvertDuration(r.WindowEnd, from, to)
		out[i] = r
	}

	return out
}

// ConvertAUCs returns copies of aucs expressed in to.
func ConvertAUCs(aucs []growth.AUC, from, to TimeUnit) []growth.AUC {
	out := make([]growth.AUC, len(aucs))
	for i, a := range aucs {
		a.Value = ConvertAUC(a.Value, from, to)
		out[i] = a
	}

	return out
}
