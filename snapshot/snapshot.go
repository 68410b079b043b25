package snapshot

import (
	"fmt"
	"slices"

	"github.com/odysseylab/odyssey/compress"
	"github.com/odysseylab/odyssey/endian"
	"github.com/odysseylab/odyssey/growth"
	"github.com/odysseylab/odyssey/internal/options"
	"github.com/odysseylab/odyssey/series"
)

// Smallest encoded size of one row of each table.
const (
	minResultSize  = 53
	minAUCSize     = 11
	minSummarySize = 26
)

// Snapshot is the encodable output of one analysis.
type Snapshot struct {
	Results []growth.Result
	AUCs    []growth.AUC
	Summary []series.TimePointSummary
}

// EncoderConfig controls how Encode writes a snapshot.
type EncoderConfig struct {
	// Compression is the body codec. Default: compress.CompressionZstd.
	Compression compress.CompressionType
	// Engine is the byte order of float fields. Default: little-endian.
	Engine endian.EndianEngine
}

// Option configures Encode.
type Option = options.Option[*EncoderConfig]

// WithCompression selects the body codec.
func WithCompression(c compress.CompressionType) Option {
	return options.New(func(cfg *EncoderConfig) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		cfg.Compression = c

		return nil
	})
}

// WithBigEndian writes float fields most significant byte first.
func WithBigEndian() Option {
	return options.NoError(func(cfg *EncoderConfig) {
		cfg.Engine = endian.GetBigEndianEngine()
	})
}

// WithLittleEndian writes float fields least significant byte first.
func WithLittleEndian() Option {
	return options.NoError(func(cfg *EncoderConfig) {
		cfg.Engine = endian.GetLittleEndianEngine()
	})
}

// WithNativeEndian writes float fields in the host byte order.
func WithNativeEndian() Option {
	return options.NoError(func(cfg *EncoderConfig) {
		cfg.Engine = endian.CheckEndianness()
	})
}

// Encode serializes s.
//
// Parameters:
//   - s: Snapshot to encode; a nil snapshot encodes as empty
//   - opts: Codec and byte-order options
//
// Returns:
//   - []byte: Header followed by the compressed body, owned by the caller
//   - error: Invalid option or compression failure
func Encode(s *Snapshot, opts ...Option) ([]byte, error) {
	data, _, err := EncodeWithStats(s, opts...)
	return data, err
}

// EncodeWithStats is Encode that also reports the body compression stats.
func EncodeWithStats(s *Snapshot, opts ...Option) ([]byte, compress.CompressionStats, error) {
	cfg := &EncoderConfig{
		Compression: compress.CompressionZstd,
		Engine:      endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, compress.CompressionStats{}, fmt.Errorf("snapshot options: %w", err)
	}
	if s == nil {
		s = &Snapshot{}
	}

	w := newBodyWriter(cfg.Engine)
	defer w.release()

	writeResults(w, s.Results)
	writeAUCs(w, s.AUCs)
	writeSummary(w, s.Summary)

	body, stats, err := compress.CompressWithStats(cfg.Compression, w.Bytes())
	if err != nil {
		return nil, compress.CompressionStats{}, fmt.Errorf("snapshot body: %w", err)
	}

	h := Header{Version: Version, Compression: cfg.Compression}
	if endian.IsBigEndian(cfg.Engine) {
		h.Flags |= BigEndianMask
	}

	out := make([]byte, 0, HeaderSize+len(body))
	out = append(out, h.Bytes()...)
	out = append(out, body...)

	return out, stats, nil
}

// Decode parses a snapshot produced by Encode.
//
// Empty tables decode as nil slices.
//
// Returns:
//   - *Snapshot: Decoded snapshot
//   - error: Header validation error, decompression error or ErrCorrupted
func Decode(data []byte) (*Snapshot, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, err
	}
	// Decompressors may return their input; clone so the snapshot never
	// aliases caller memory.
	body, err := codec.Decompress(slices.Clone(data[HeaderSize:]))
	if err != nil {
		return nil, fmt.Errorf("snapshot body (%s): %w", h.Compression, err)
	}

	r := &bodyReader{data: body, engine: h.Engine()}
	s := &Snapshot{
		Results: readResults(r),
		AUCs:    readAUCs(r),
		Summary: readSummary(r),
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupted, r.remaining())
	}

	return s, nil
}

func writeKey(w *bodyWriter, k series.GroupKey) {
	w.str(k.Treatment)
	w.varint(k.Replicate)
}

func readKey(r *bodyReader) series.GroupKey {
	return series.GroupKey{Treatment: r.str(), Replicate: r.varint()}
}

func writeResults(w *bodyWriter, rows []growth.Result) {
	w.uvarint(uint64(len(rows)))
	for _, row := range rows {
		writeKey(w, row.Key)
		w.varint(row.N)
		w.float(row.Mu)
		w.float(row.Intercept)
		w.float(row.R2)
		w.float(row.DoublingTime)
		w.float(row.WindowStart)
		w.float(row.WindowEnd)
		w.u8(uint8(row.Method))
		w.str(row.Reason)
	}
}

func readResults(r *bodyReader) []growth.Result {
	n := r.count(minResultSize)
	if n == 0 {
		return nil
	}

	rows := make([]growth.Result, n)
	for i := range rows {
		row := &rows[i]
		row.Key = readKey(r)
		row.N = r.varint()
		row.Mu = r.float()
		row.Intercept = r.float()
		row.R2 = r.float()
		row.DoublingTime = r.float()
		row.WindowStart = r.float()
		row.WindowEnd = r.float()
		row.Method = growth.Method(r.u8())
		if _, err := row.Method.MarshalText(); err != nil && r.err == nil {
			r.fail("%v", err)
		}
		row.Reason = r.str()
	}

	return rows
}

func writeAUCs(w *bodyWriter, rows []growth.AUC) {
	w.uvarint(uint64(len(rows)))
	for _, row := range rows {
		writeKey(w, row.Key)
		w.float(row.Value)
		w.varint(row.N)
	}
}

func readAUCs(r *bodyReader) []growth.AUC {
	n := r.count(minAUCSize)
	if n == 0 {
		return nil
	}

	rows := make([]growth.AUC, n)
	for i := range rows {
		rows[i] = growth.AUC{Key: readKey(r), Value: r.float(), N: r.varint()}
	}

	return rows
}

func writeSummary(w *bodyWriter, rows []series.TimePointSummary) {
	w.uvarint(uint64(len(rows)))
	for _, row := range rows {
		w.str(row.Treatment)
		w.float(row.Time)
		w.float(row.Mean)
		w.float(row.SD)
		w.varint(row.N)
	}
}

func readSummary(r *bodyReader) []series.TimePointSummary {
	n := r.count(minSummarySize)
	if n == 0 {
		return nil
	}

	rows := make([]series.TimePointSummary, n)
	for i := range rows {
		rows[i] = series.TimePointSummary{
			Treatment: r.str(),
			Time:      r.float(),
			Mean:      r.float(),
			SD:        r.float(),
			N:         r.varint(),
		}
	}

	return rows
}
