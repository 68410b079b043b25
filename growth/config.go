package growth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/odysseylab/odyssey/internal/hash"
	"github.com/odysseylab/odyssey/series"
	"github.com/odysseylab/odyssey/window"
)

// ConfigVersion is the current version of the serialized Config layout.
const ConfigVersion = 1

// Defaults applied by NewConfig.
const (
	DefaultMinPoints   = window.DefaultMinPoints
	DefaultQCThreshold = 0.9
)

var (
	// ErrInvalidConfig wraps every Config validation failure.
	ErrInvalidConfig = errors.New("invalid growth config")
	// ErrUnsupportedVersion is returned when decoding a config written by a
	// newer layout.
	ErrUnsupportedVersion = errors.New("unsupported config version")
)

// LOQSettings are the knobs of the LOQ-anchored window search.
type LOQSettings struct {
	// MinPoints overrides the automatic minimum window size when positive.
	MinPoints int `json:"min_points,omitempty" yaml:"min_points,omitempty"`
	// R2Min is the lowest acceptable R² (default 0.99).
	R2Min float64 `json:"r2_min" yaml:"r2_min"`
	// K is the blank standard-deviation multiplier (default 2).
	K float64 `json:"k" yaml:"k"`
	// ODMin and ODMax bound the raw OD inside a window; nil leaves a side open.
	ODMin *float64 `json:"od_min,omitempty" yaml:"od_min,omitempty"`
	ODMax *float64 `json:"od_max,omitempty" yaml:"od_max,omitempty"`
}

// Config describes one growth analysis run. It is built by applying Options
// to the defaults and can be stored as JSON to reproduce a run.
type Config struct {
	Version int    `json:"version" yaml:"version"`
	Method  Method `json:"method" yaml:"method"`
	// TimeWindow clips both the growth fit and the AUC. Setting it forces
	// MethodExplicit.
	TimeWindow *series.TimeWindow `json:"time_window,omitempty" yaml:"time_window,omitempty"`
	// MinPoints is the minimum window size of the scan method.
	MinPoints int         `json:"min_points" yaml:"min_points"`
	LOQ       LOQSettings `json:"loq" yaml:"loq"`
	// QCThreshold is the R² below which results are flagged.
	QCThreshold float64 `json:"qc_r2_threshold" yaml:"qc_r2_threshold"`
	// Concurrency is the number of groups fitted in parallel; 0 or 1 fits
	// sequentially.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// Blanks holds optional blank readings per group for the LOQ baseline.
	Blanks map[series.GroupKey][]float64 `json:"-" yaml:"-"`
	// Logger receives per-group diagnostics. Never nil after NewConfig.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() *Config {
	return &Config{
		Version:   ConfigVersion,
		Method:    MethodFull,
		MinPoints: DefaultMinPoints,
		LOQ: LOQSettings{
			R2Min: window.DefaultR2Min,
			K:     window.DefaultLOQK,
		},
		QCThreshold: DefaultQCThreshold,
		Logger:      slog.New(slog.DiscardHandler),
	}
}

// NewConfig applies opts to the default configuration and validates the result.
//
// Returns:
//   - *Config: The validated configuration
//   - error: The first option error, or a validation error wrapping ErrInvalidConfig
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	if err := applyOptions(cfg, opts); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Version != ConfigVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}
	if !c.Method.valid() {
		return fmt.Errorf("%w: unknown method %d", ErrInvalidConfig, c.Method)
	}
	if c.TimeWindow != nil {
		if err := c.TimeWindow.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.MinPoints < 2 {
		return fmt.Errorf("%w: min points %d, need at least 2", ErrInvalidConfig, c.MinPoints)
	}
	if c.LOQ.MinPoints != 0 && c.LOQ.MinPoints < 2 {
		return fmt.Errorf("%w: loq min points %d, need 0 or at least 2", ErrInvalidConfig, c.LOQ.MinPoints)
	}
	if !(c.LOQ.R2Min >= 0 && c.LOQ.R2Min <= 1) {
		return fmt.Errorf("%w: loq r2 min %v outside [0, 1]", ErrInvalidConfig, c.LOQ.R2Min)
	}
	if c.LOQ.K < 0 || math.IsNaN(c.LOQ.K) || math.IsInf(c.LOQ.K, 0) {
		return fmt.Errorf("%w: loq k %v", ErrInvalidConfig, c.LOQ.K)
	}
	if lo, hi := c.odBounds(); lo > hi || math.IsNaN(lo) || math.IsNaN(hi) {
		return fmt.Errorf("%w: od bounds [%v, %v]", ErrInvalidConfig, lo, hi)
	}
	if math.IsNaN(c.QCThreshold) {
		return fmt.Errorf("%w: qc threshold is NaN", ErrInvalidConfig)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency %d", ErrInvalidConfig, c.Concurrency)
	}

	return nil
}

// EffectiveMethod returns the window method a fit will use. An explicit time
// window always wins over the configured method.
func (c *Config) EffectiveMethod() Method {
	if c.TimeWindow != nil {
		return MethodExplicit
	}
	if c.Method == MethodExplicit {
		return MethodFull
	}

	return c.Method
}

func (c *Config) odBounds() (lo, hi float64) {
	lo, hi = math.Inf(-1), math.Inf(1)
	if c.LOQ.ODMin != nil {
		lo = *c.LOQ.ODMin
	}
	if c.LOQ.ODMax != nil {
		hi = *c.LOQ.ODMax
	}

	return lo, hi
}

func (c *Config) loqOptions() []window.LOQOption {
	lo, hi := c.odBounds()

	return []window.LOQOption{
		window.WithODBounds(lo, hi),
		window.WithLOQMinPoints(c.LOQ.MinPoints),
		window.WithR2Min(c.LOQ.R2Min),
		window.WithLOQK(c.LOQ.K),
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return c.Logger
}

// Encode writes c as indented JSON.
func (c *Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode growth config: %w", err)
	}

	return nil
}

// DecodeConfig reads a JSON configuration written by Encode. Fields missing
// from the input keep their defaults; unknown fields are rejected.
func DecodeConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode growth config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EncodeYAML writes c as YAML with the same field names as Encode.
func (c *Config) EncodeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode growth config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode growth config: %w", err)
	}

	return nil
}

// DecodeConfigYAML reads a YAML configuration. It follows the rules of
// DecodeConfig.
func DecodeConfigYAML(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode growth config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Key fingerprints every setting that affects analysis output, including the
// blank readings. Logger and Concurrency do not contribute.
func (c *Config) Key() uint64 {
	b := hash.NewBuilder().
		Int(c.Version).
		Int(int(c.EffectiveMethod())).
		Bool(c.TimeWindow != nil)
	if c.TimeWindow != nil {
		b.Float64(c.TimeWindow.Start).Float64(c.TimeWindow.End)
	}

	lo, hi := c.odBounds()
	b.Int(c.MinPoints).
		Int(c.LOQ.MinPoints).
		Float64(c.LOQ.R2Min).
		Float64(c.LOQ.K).
		Float64(lo).
		Float64(hi).
		Float64(c.QCThreshold)

	keys := make([]series.GroupKey, 0, len(c.Blanks))
	for k := range c.Blanks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	b.Int(len(keys))
	for _, k := range keys {
		b.String(k.Treatment).Int(k.Replicate).Int(len(c.Blanks[k]))
		for _, v := range c.Blanks[k] {
			b.Float64(v)
		}
	}

	return b.Sum()
}
