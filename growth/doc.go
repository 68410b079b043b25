// Package growth estimates per-group growth rates, areas under the curve and
// QC flags from a long-format OD table.
//
// # Growth rates
//
// FitGrowthRates produces one Result per (treatment, replicate) group. The
// fitting window is chosen per group:
//
//   - WithTimeWindow(start, end): fit ln(OD) over the points in the window
//   - WithAutoWindow(): LOQ-anchored search (window.DetectLOQ), then refit
//     ln(OD) over the selected points
//   - WithScanWindow(minPoints): best-scoring window scan (window.BestWindow)
//   - no option: fit every usable point
//
// An explicit time window always takes precedence. Groups that cannot be
// fitted keep their row with NaN values and, for automatic windows, a Reason.
//
//	results, err := growth.FitGrowthRates(tbl,
//	    growth.WithAutoWindow(),
//	    growth.WithBlanks(blanks),
//	    growth.WithConcurrency(runtime.GOMAXPROCS(0)),
//	)
//
// # AUC and QC
//
// ComputeAUC integrates OD over time per group with the trapezoid rule and
// Annotate flags low R² and non-positive growth rates:
//
//	flagged, err := growth.Annotate(results, growth.WithR2Threshold(0.9))
//	for _, f := range flagged {
//	    fmt.Println(f.Key, f.Mu, f.FlagString())
//	}
//
// All three functions take the same Option list, so a single configuration
// can drive a whole analysis. The resolved Config can be stored with
// Config.Encode and restored with DecodeConfig.
//
// # Treatment-level helpers
//
// WindowR2ByTreatment reports how well one window suits the pooled
// replicates of each treatment. ConsensusWindow suggests a shared window
// from the median of per-treatment seeded scans.
package growth
