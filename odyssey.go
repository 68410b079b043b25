// Package odyssey analyzes microbial growth curves from optical-density time
// series.
//
// The root package runs a complete analysis in one call. For finer control use
// the underlying packages directly:
//
//   - series: long-format OD tables, grouping, cleaning and CSV input
//   - regression: ordinary least squares and exponential fits
//   - window: automatic fitting-window selection (scan, start detection, LOQ)
//   - growth: per-group growth rates, AUC, QC flags and treatment helpers
//   - units: time-unit conversion of rates, durations and AUCs
//   - snapshot, compress, cache: binary encoding and memoization of results
//
// # Basic Usage
//
//	f, _ := os.Open("plate.csv")
//	tbl, err := series.ReadCSV(f)
//	if err != nil {
//	    return err
//	}
//
//	a, err := odyssey.Analyze(tbl,
//	    growth.WithAutoWindow(),
//	    growth.WithR2Threshold(0.95),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, f := range a.Flagged {
//	    fmt.Println(f.Key, f.Mu, f.DoublingTime, f.FlagString())
//	}
//
// Options are growth.Option values; one list configures growth-rate fitting,
// AUC and QC alike.
//
// # Caching
//
// AnalyzeCached memoizes analyses in a cache.Cache keyed by the table content
// and the resolved configuration:
//
//	c, _ := cache.New(cache.WithMaxEntries(128))
//	a, hit, err := odyssey.AnalyzeCached(c, tbl, growth.WithAutoWindow())
//
// # Errors
//
// Only configuration errors are returned. Groups that cannot be fitted appear
// in the output with NaN values and, for automatic windows, a Reason.
package odyssey

import (
	"fmt"
	"io"

	"github.com/odysseylab/odyssey/cache"
	"github.com/odysseylab/odyssey/growth"
	"github.com/odysseylab/odyssey/series"
	"github.com/odysseylab/odyssey/snapshot"
	"github.com/odysseylab/odyssey/units"
)

// Analysis bundles every output of one analysis run.
type Analysis struct {
	// Config is the resolved configuration the analysis ran with.
	Config *growth.Config
	// Results holds one growth-rate fit per (treatment, replicate) group.
	Results []growth.Result
	// AUCs holds one area under the curve per group.
	AUCs []growth.AUC
	// Flagged holds Results with their QC flags.
	Flagged []growth.Flagged
	// Summary holds the across-replicate mean and sd per (treatment, time).
	Summary []series.TimePointSummary
}

// Analyze fits growth rates, integrates AUCs, flags QC problems and
// summarizes replicates for every group in tbl.
//
// Parameters:
//   - tbl: Long-format OD table
//   - opts: Growth options shared by all steps
//
// Returns:
//   - *Analysis: The bundled outputs, rows ordered by treatment then replicate
//   - error: Option or configuration error
func Analyze(tbl *series.Table, opts ...growth.Option) (*Analysis, error) {
	cfg, err := growth.NewConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("odyssey: %w", err)
	}

	return analyze(tbl, cfg)
}

// AnalyzeCSV reads a long-format CSV (time, treatment, replicate, od) and
// analyzes it.
func AnalyzeCSV(r io.Reader, opts ...growth.Option) (*Analysis, error) {
	tbl, err := series.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("odyssey: %w", err)
	}

	return Analyze(tbl, opts...)
}

// AnalyzeCached is Analyze backed by c.
//
// The cache key covers every observation of tbl and the resolved
// configuration; the logger and concurrency settings do not affect it.
//
// Returns:
//   - *Analysis: The bundled outputs
//   - bool: Whether the outputs came from the cache
//   - error: Configuration or cache encoding error
func AnalyzeCached(c *cache.Cache, tbl *series.Table, opts ...growth.Option) (*Analysis, bool, error) {
	cfg, err := growth.NewConfig(opts...)
	if err != nil {
		return nil, false, fmt.Errorf("odyssey: %w", err)
	}

	snap, hit, err := c.GetOrCompute(cache.Key(tbl, cfg), func() (*snapshot.Snapshot, error) {
		a, err := analyze(tbl, cfg)
		if err != nil {
			return nil, err
		}

		return a.Snapshot(), nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("odyssey: %w", err)
	}

	a, err := FromSnapshot(snap, cfg)
	if err != nil {
		return nil, false, err
	}

	return a, hit, nil
}

func analyze(tbl *series.Table, cfg *growth.Config) (*Analysis, error) {
	withCfg := growth.WithConfig(cfg)

	results, err := growth.FitGrowthRates(tbl, withCfg)
	if err != nil {
		return nil, fmt.Errorf("odyssey: growth rates: %w", err)
	}
	aucs, err := growth.ComputeAUC(tbl, withCfg)
	if err != nil {
		return nil, fmt.Errorf("odyssey: auc: %w", err)
	}
	flagged, err := growth.Annotate(results, withCfg)
	if err != nil {
		return nil, fmt.Errorf("odyssey: qc: %w", err)
	}

	return &Analysis{
		Config:  cfg,
		Results: results,
		AUCs:    aucs,
		Flagged: flagged,
		Summary: series.MeanSD(tbl),
	}, nil
}

// Snapshot returns the encodable part of a. QC flags are not stored; they
// are recomputed from the results.
func (a *Analysis) Snapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Results: a.Results,
		AUCs:    a.AUCs,
		Summary: a.Summary,
	}
}

// FromSnapshot rebuilds an Analysis from a decoded snapshot, flagging the
// results with cfg's QC threshold. A nil cfg uses the defaults.
func FromSnapshot(s *snapshot.Snapshot, cfg *growth.Config) (*Analysis, error) {
	if cfg == nil {
		cfg = growth.DefaultConfig()
	}

	flagged, err := growth.Annotate(s.Results, growth.WithConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("odyssey: qc: %w", err)
	}

	return &Analysis{
		Config:  cfg,
		Results: s.Results,
		AUCs:    s.AUCs,
		Flagged: flagged,
		Summary: s.Summary,
	}, nil
}

// InUnits returns a copy of a with times, rates and AUCs converted from one
// time unit to another. OD values are unchanged.
func (a *Analysis) InUnits(from, to units.TimeUnit) *Analysis {
	out := &Analysis{
		Config:  a.Config,
		Results: units.ConvertResults(a.Results, from, to),
		AUCs:    units.ConvertAUCs(a.AUCs, from, to),
		Summary: make([]series.TimePointSummary, len(a.Summary)),
	}

	out.Flagged = make([]growth.Flagged, len(a.Flagged))
	for i, f := range a.Flagged {
		out.Flagged[i] = growth.Flagged{Result: units.ConvertResults([]growth.Result{f.Result}, from, to)[0], Flags: f.Flags}
	}
	for i, s := range a.Summary {
		s.Time = units.ConvertDuration(s.Time, from, to)
		out.Summary[i] = s
	}

	return out
}
