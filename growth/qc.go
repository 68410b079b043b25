package growth

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// FlagNonPositiveMu marks a defined growth rate that is zero or negative.
const FlagNonPositiveMu = "non_positive_mu"

// LowR2Flag returns the flag for an R² below threshold, e.g. "low_r2(<0.9)".
func LowR2Flag(threshold float64) string {
	return "low_r2(<" + strconv.FormatFloat(threshold, 'g', -1, 64) + ")"
}

// Flagged is a Result with its QC flags.
type Flagged struct {
	Result
	// Flags lists the QC flags in a fixed order; empty when the fit is clean.
	Flags []string
}

// FlagString joins the flags with ", ". A clean result yields "".
func (f Flagged) FlagString() string {
	return strings.Join(f.Flags, ", ")
}

// Clean reports whether no flag was raised.
func (f Flagged) Clean() bool {
	return len(f.Flags) == 0
}

// Annotate attaches QC flags to copies of results.
//
// A result is flagged low_r2(<threshold) when its R² is defined and below
// the threshold (default 0.9, see WithR2Threshold), and non_positive_mu when
// its growth rate is defined and not positive. Undefined values never raise
// a flag. results is not modified.
func Annotate(results []Result, opts ...Option) ([]Flagged, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	out := make([]Flagged, len(results))
	for i, r := range results {
		out[i] = Flagged{Result: r, Flags: qcFlags(r, cfg.QCThreshold)}
	}

	return out, nil
}

func qcFlags(r Result, threshold float64) []string {
	var flags []string
	if !math.IsNaN(r.R2) && r.R2 < threshold {
		flags = append(flags, LowR2Flag(threshold))
	}
	if !math.IsNaN(r.Mu) && r.Mu <= 0 {
		flags = append(flags, FlagNonPositiveMu)
	}

	return slices.Clip(flags)
}
