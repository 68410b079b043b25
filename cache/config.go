package cache

import (
	"errors"
	"log/slog"

	"github.com/odysseylab/odyssey/compress"
	"github.com/odysseylab/odyssey/internal/options"
)

// DefaultMaxEntries is the number of snapshots a cache keeps by default.
const DefaultMaxEntries = 256

// ErrInvalidConfig is returned for an invalid cache option.
var ErrInvalidConfig = errors.New("cache: invalid config")

// Config holds cache settings.
type Config struct {
	// MaxEntries bounds the number of stored snapshots. The oldest entry is
	// evicted first. Default: DefaultMaxEntries.
	MaxEntries int
	// Compression is the snapshot codec. Default: compress.CompressionZstd.
	Compression compress.CompressionType
	// Logger receives hit, miss and store events at debug level.
	Logger *slog.Logger
}

// Option configures a Cache.
type Option = options.Option[*Config]

// WithMaxEntries sets the entry limit (at least 1).
func WithMaxEntries(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return errors.Join(ErrInvalidConfig, errors.New("max entries must be >= 1"))
		}
		c.MaxEntries = n

		return nil
	})
}

// WithCompression selects the codec stored snapshots are compressed with.
func WithCompression(ct compress.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return errors.Join(ErrInvalidConfig, err)
		}
		c.Compression = ct

		return nil
	})
}

// WithLogger sets the logger. A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.Logger = l
	})
}
