package growth

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/odysseylab/odyssey/internal/options"
	"github.com/odysseylab/odyssey/series"
)

// Option configures a growth analysis. The same options drive
// FitGrowthRates, ComputeAUC and Annotate.
type Option = options.Option[*Config]

func applyOptions(cfg *Config, opts []Option) error {
	if err := options.Apply(cfg, opts...); err != nil {
		return fmt.Errorf("apply growth options: %w", err)
	}

	return nil
}

// WithConfig replaces the whole configuration with a copy of cfg. Options
// after it still apply.
func WithConfig(cfg *Config) Option {
	return options.New(func(c *Config) error {
		if cfg == nil {
			return fmt.Errorf("%w: nil config", ErrInvalidConfig)
		}
		logger := c.Logger
		*c = *cfg
		if c.Logger == nil {
			c.Logger = logger
		}

		return nil
	})
}

// WithTimeWindow restricts fitting and AUC to [start, end] and fits that
// range directly, without automatic window detection.
func WithTimeWindow(start, end float64) Option {
	return options.New(func(c *Config) error {
		w := series.TimeWindow{Start: start, End: end}
		if err := w.Validate(); err != nil {
			return err
		}
		c.TimeWindow = &w
		c.Method = MethodExplicit

		return nil
	})
}

// WithAutoWindow selects the LOQ-anchored window search unless an explicit
// time window is also set.
func WithAutoWindow() Option {
	return options.NoError(func(c *Config) {
		c.Method = MethodLOQ
	})
}

// WithScanWindow selects the best-scoring window scan with windows of at
// least minPoints points, unless an explicit time window is also set.
func WithScanWindow(minPoints int) Option {
	return options.New(func(c *Config) error {
		if minPoints < 2 {
			return fmt.Errorf("%w: min points %d, need at least 2", ErrInvalidConfig, minPoints)
		}
		c.Method = MethodScan
		c.MinPoints = minPoints

		return nil
	})
}

// WithMinPoints sets the minimum window size of the scan method.
func WithMinPoints(n int) Option {
	return options.New(func(c *Config) error {
		if n < 2 {
			return fmt.Errorf("%w: min points %d, need at least 2", ErrInvalidConfig, n)
		}
		c.MinPoints = n

		return nil
	})
}

// WithBlanks supplies blank readings per group for the LOQ baseline. Groups
// without an entry use their own first readings.
func WithBlanks(blanks map[series.GroupKey][]float64) Option {
	return options.NoError(func(c *Config) {
		c.Blanks = make(map[series.GroupKey][]float64, len(blanks))
		for k, v := range blanks {
			c.Blanks[k] = slices.Clone(v)
		}
	})
}

// WithLOQMinPoints fixes the LOQ search's minimum window size; 0 restores the
// automatic size.
func WithLOQMinPoints(n int) Option {
	return options.New(func(c *Config) error {
		if n != 0 && n < 2 {
			return fmt.Errorf("%w: loq min points %d", ErrInvalidConfig, n)
		}
		c.LOQ.MinPoints = n

		return nil
	})
}

// WithR2Min sets the lowest R² the LOQ search accepts.
func WithR2Min(r2 float64) Option {
	return options.New(func(c *Config) error {
		if !(r2 >= 0 && r2 <= 1) {
			return fmt.Errorf("%w: r2 min %v outside [0, 1]", ErrInvalidConfig, r2)
		}
		c.LOQ.R2Min = r2

		return nil
	})
}

// WithLOQK sets the blank standard-deviation multiplier of the LOQ.
func WithLOQK(k float64) Option {
	return options.New(func(c *Config) error {
		if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
			return fmt.Errorf("%w: loq k %v", ErrInvalidConfig, k)
		}
		c.LOQ.K = k

		return nil
	})
}

// WithODBounds restricts LOQ windows to raw OD values within [minOD, maxOD].
func WithODBounds(minOD, maxOD float64) Option {
	return options.New(func(c *Config) error {
		if math.IsNaN(minOD) || math.IsNaN(maxOD) || minOD > maxOD {
			return fmt.Errorf("%w: od bounds [%v, %v]", ErrInvalidConfig, minOD, maxOD)
		}
		c.LOQ.ODMin, c.LOQ.ODMax = nil, nil
		if !math.IsInf(minOD, -1) {
			c.LOQ.ODMin = &minOD
		}
		if !math.IsInf(maxOD, 1) {
			c.LOQ.ODMax = &maxOD
		}

		return nil
	})
}

// WithR2Threshold sets the R² below which Annotate flags a result.
func WithR2Threshold(th float64) Option {
	return options.New(func(c *Config) error {
		if math.IsNaN(th) {
			return fmt.Errorf("%w: qc threshold is NaN", ErrInvalidConfig)
		}
		c.QCThreshold = th

		return nil
	})
}

// WithConcurrency fits up to n groups in parallel. Output order does not
// depend on n.
func WithConcurrency(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("%w: concurrency %d", ErrInvalidConfig, n)
		}
		c.Concurrency = n

		return nil
	})
}

// WithLogger sets the logger for per-group diagnostics. A nil logger
// discards output.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		c.Logger = logger
	})
}
