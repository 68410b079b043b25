package growth

import (
	"log/slog"
	"math"
	"sync"

	"github.com/odysseylab/odyssey/regression"
	"github.com/odysseylab/odyssey/series"
	"github.com/odysseylab/odyssey/window"
)

// Result is the growth-rate fit of one (treatment, replicate) group.
//
// Undefined values are NaN: a group with fewer than two usable points, a
// degenerate fit, or a failed automatic window search still yields a Result.
type Result struct {
	Key series.GroupKey
	// N is the number of points the fit used, or the number of usable points
	// when no fit was possible.
	N         int
	Mu        float64
	Intercept float64
	R2        float64
	// DoublingTime is ln2/Mu; NaN when Mu is 0 or undefined.
	DoublingTime float64
	// WindowStart and WindowEnd are the first and last times of the fitted points.
	WindowStart float64
	WindowEnd   float64
	Method      Method
	// Reason explains an undefined result of an automatic window search.
	Reason string
}

// Defined reports whether the result carries a growth rate.
func (r Result) Defined() bool {
	return !math.IsNaN(r.Mu)
}

func undefinedResult(key series.GroupKey, n int, method Method, reason string) Result {
	nan := math.NaN()

	return Result{
		Key:          key,
		N:            n,
		Mu:           nan,
		Intercept:    nan,
		R2:           nan,
		DoublingTime: nan,
		WindowStart:  nan,
		WindowEnd:    nan,
		Method:       method,
		Reason:       reason,
	}
}

// FitGrowthRates fits the exponential growth rate of every group in tbl.
//
// Each group is cleaned of missing readings and non-positive OD, clipped to
// the explicit time window if one is set, and sorted by time. The window is
// then chosen by the effective Method:
//
//   - MethodExplicit and MethodFull fit every remaining point
//   - MethodLOQ runs window.DetectLOQ on the raw OD and refits ln(OD) over
//     the returned range
//   - MethodScan runs window.BestWindow on ln(OD)
//
// Groups that cannot be fitted produce an undefined Result instead of an
// error. The result has one row per group ordered by treatment, then
// replicate, regardless of WithConcurrency.
//
// Parameters:
//   - tbl: Long-format OD table
//   - opts: Growth options
//
// Returns:
//   - []Result: One result per group
//   - error: Option or configuration error; never a per-group failure
func FitGrowthRates(tbl *series.Table, opts ...Option) ([]Result, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return fitGroups(tbl.Groups(), cfg), nil
}

func fitGroups(groups []series.Group, cfg *Config) []Result {
	results := make([]Result, len(groups))

	workers := min(cfg.Concurrency, len(groups))
	if workers <= 1 {
		for i, g := range groups {
			results[i] = fitGroup(g, cfg)
		}

		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fitGroup(groups[i], cfg)
			}
		}()
	}
	for i := range groups {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func fitGroup(g series.Group, cfg *Config) Result {
	method := cfg.EffectiveMethod()

	s := g.Series.Clean().Positive()
	if cfg.TimeWindow != nil {
		s = s.Clip(*cfg.TimeWindow)
	}
	s = s.Sorted()

	if s.Len() < 2 {
		return undefinedResult(g.Key, s.Len(), method, "")
	}

	switch method {
	case MethodLOQ:
		return fitLOQ(g.Key, s, cfg)
	case MethodScan:
		return fitScan(g.Key, s, cfg)
	default:
		return resultFromFit(g.Key, method, regression.FitExponential(s.Time, s.OD), s.Time[0], s.Time[s.Len()-1])
	}
}

func fitLOQ(key series.GroupKey, s series.Series, cfg *Config) Result {
	aw, err := window.DetectLOQ(s.Time, s.OD, cfg.Blanks[key], cfg.loqOptions()...)
	if err != nil {
		cfg.logger().Debug("auto window failed",
			slog.String("group", key.String()),
			slog.Int("points", s.Len()),
			slog.String("reason", err.Error()),
		)

		return undefinedResult(key, s.Len(), MethodLOQ, err.Error())
	}

	lo, hi := aw.StartIndex, aw.EndIndex+1
	fit := regression.FitExponential(s.Time[lo:hi], s.OD[lo:hi])
	cfg.logger().Debug("auto window selected",
		slog.String("group", key.String()),
		slog.Float64("t_start", aw.TStart),
		slog.Float64("t_end", aw.TEnd),
		slog.Float64("loq", aw.Diagnostics.LOQ),
		slog.Float64("mu", fit.Slope),
	)

	return resultFromFit(key, MethodLOQ, fit, aw.TStart, aw.TEnd)
}

func fitScan(key series.GroupKey, s series.Series, cfg *Config) Result {
	w, err := window.BestWindow(s.Time, s.LogOD(), window.WithMinPoints(cfg.MinPoints))
	if err != nil {
		cfg.logger().Debug("window scan failed",
			slog.String("group", key.String()),
			slog.Int("points", s.Len()),
			slog.String("reason", err.Error()),
		)

		return undefinedResult(key, s.Len(), MethodScan, err.Error())
	}

	return resultFromFit(key, MethodScan, w.LinearFit, w.TMin, w.TMax)
}

func resultFromFit(key series.GroupKey, method Method, fit regression.LinearFit, start, end float64) Result {
	return Result{
		Key:          key,
		N:            fit.N,
		Mu:           fit.Slope,
		Intercept:    fit.Intercept,
		R2:           fit.RSquared,
		DoublingTime: fit.DoublingTime(),
		WindowStart:  start,
		WindowEnd:    end,
		Method:       method,
	}
}
