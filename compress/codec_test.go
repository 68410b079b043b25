package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var errMismatch = errors.New("round trip mismatch")

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

// resultColumn mimics an encoded snapshot column: growth rates of a plate
// with a few NaN wells.
func resultColumn(n int) []byte {
	buf := make([]byte, 0, n*8)
	for i := range n {
		v := 0.3 + 0.001*float64(i%12)
		if i%17 == 0 {
			v = math.NaN()
		}
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	return buf
}

func TestCompressionType_String(t *testing.T) {
	tests := []struct {
		cType    CompressionType
		expected string
	}{
		{CompressionNone, "None"},
		{CompressionZstd, "Zstd"},
		{CompressionS2, "S2"},
		{CompressionLZ4, "LZ4"},
		{CompressionType(0xFF), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.cType.String())
		})
	}
}

func TestParseCompressionType(t *testing.T) {
	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		got, err := ParseCompressionType(c.String())
		require.NoError(t, err)
		require.Equal(t, c, got)
	}

	_, err := ParseCompressionType("brotli")
	require.Error(t, err)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "single_byte", data: []byte{0x42}},
		{name: "treatment_names", data: bytes.Repeat([]byte("wild-type\x00ΔrpoS\x00"), 200)},
		{name: "result_column", data: resultColumn(384)},
		{name: "large_column", data: resultColumn(64 * 1024)},
		{name: "zeros", data: make([]byte, 256*1024)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotEmpty(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.True(t, bytes.Equal(tc.data, decompressed), "decompressed data must match original")
				})
			}
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := [][]byte{
		{0xFF, 0xFF, 0xFF, 0xFF},
		[]byte("this is not compressed data"),
	}

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue
		}

		t.Run(codecName, func(t *testing.T) {
			for _, input := range invalidInputs {
				_, err := codec.Decompress(input)
				require.Error(t, err)
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	data := resultColumn(2048)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan error, 16)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					compressed, err := codec.Compress(data)
					if err != nil {
						errs <- err
						return
					}
					out, err := codec.Decompress(compressed)
					if err != nil {
						errs <- err
						return
					}
					if !bytes.Equal(data, out) {
						errs <- errMismatch
					}
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}
		})
	}
}

func TestCreateAndGetCodec(t *testing.T) {
	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		codec, err := CreateCodec(c, "snapshot")
		require.NoError(t, err)
		require.NotNil(t, codec)

		builtin, err := GetCodec(c)
		require.NoError(t, err)
		require.NotNil(t, builtin)
	}

	_, err := CreateCodec(CompressionType(0), "snapshot")
	require.ErrorContains(t, err, "invalid snapshot compression")

	_, err = GetCodec(CompressionType(9))
	require.Error(t, err)
}

func TestCompressWithStats(t *testing.T) {
	data := make([]byte, 64*1024)

	out, stats, err := CompressWithStats(CompressionZstd, data)
	require.NoError(t, err)
	require.Equal(t, CompressionZstd, stats.Algorithm)
	require.Equal(t, int64(len(data)), stats.OriginalSize)
	require.Equal(t, int64(len(out)), stats.CompressedSize)
	require.Less(t, stats.CompressionRatio(), 0.1)
	require.Greater(t, stats.SpaceSavings(), 90.0)

	require.Zero(t, CompressionStats{}.CompressionRatio())

	_, _, err = CompressWithStats(CompressionType(0), data)
	require.Error(t, err)
}

func BenchmarkAllCodecs_RoundTrip(b *testing.B) {
	data := resultColumn(4096)

	for name, codec := range getAllCodecs() {
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				compressed, _ := codec.Compress(data)
				_, _ = codec.Decompress(compressed)
			}
		})
	}
}
