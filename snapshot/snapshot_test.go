package snapshot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odysseylab/odyssey/compress"
	"github.com/odysseylab/odyssey/endian"
	"github.com/odysseylab/odyssey/growth"
	"github.com/odysseylab/odyssey/series"
)

var allCompressions = []compress.CompressionType{
	compress.CompressionNone,
	compress.CompressionZstd,
	compress.CompressionS2,
	compress.CompressionLZ4,
}

func sampleSnapshot() *Snapshot {
	nan := math.NaN()

	return &Snapshot{
		Results: []growth.Result{
			{
				Key:          series.GroupKey{Treatment: "wild-type", Replicate: 1},
				N:            7,
				Mu:           0.4,
				Intercept:    -3.2,
				R2:           0.998,
				DoublingTime: math.Ln2 / 0.4,
				WindowStart:  2,
				WindowEnd:    8,
				Method:       growth.MethodLOQ,
			},
			{
				Key:          series.GroupKey{Treatment: "ΔrpoS", Replicate: -2},
				N:            1,
				Mu:           nan,
				Intercept:    nan,
				R2:           nan,
				DoublingTime: nan,
				WindowStart:  nan,
				WindowEnd:    nan,
				Method:       growth.MethodScan,
				Reason:       "no window satisfies the scan constraints",
			},
		},
		AUCs: []growth.AUC{
			{Key: series.GroupKey{Treatment: "wild-type", Replicate: 1}, Value: 1.95, N: 5},
			{Key: series.GroupKey{Treatment: "ΔrpoS", Replicate: -2}, Value: nan, N: 1},
		},
		Summary: []series.TimePointSummary{
			{Treatment: "wild-type", Time: 0, Mean: 0.21, SD: 0.0141421356, N: 2},
			{Treatment: "wild-type", Time: 1, Mean: 0.3, SD: nan, N: 1},
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	want := sampleSnapshot()

	for _, c := range allCompressions {
		t.Run(c.String(), func(t *testing.T) {
			data, err := Encode(want, WithCompression(c))
			require.NoError(t, err)

			h, err := ParseHeader(data)
			require.NoError(t, err)
			require.Equal(t, Version, h.Version)
			require.Equal(t, c, h.Compression)
			require.False(t, h.IsBigEndian())

			got, err := Decode(data)
			require.NoError(t, err)
			require.Len(t, got.Results, 2)
			require.Len(t, got.AUCs, 2)
			require.Len(t, got.Summary, 2)

			require.Equal(t, want.Results[0], got.Results[0])
			require.Equal(t, want.AUCs[0], got.AUCs[0])
			require.Equal(t, want.Summary[0], got.Summary[0])

			undefined := got.Results[1]
			require.Equal(t, series.GroupKey{Treatment: "ΔrpoS", Replicate: -2}, undefined.Key)
			require.Equal(t, growth.MethodScan, undefined.Method)
			require.Equal(t, want.Results[1].Reason, undefined.Reason)
			require.False(t, undefined.Defined())
			require.True(t, math.IsNaN(undefined.R2))
			require.True(t, math.IsNaN(undefined.WindowEnd))
			require.True(t, math.IsNaN(got.AUCs[1].Value))
			require.True(t, math.IsNaN(got.Summary[1].SD))

			// re-encoding the decoded snapshot reproduces the bytes
			again, err := Encode(got, WithCompression(c))
			require.NoError(t, err)
			require.Equal(t, data, again)
		})
	}
}

func TestEncodeDecode_BigEndian(t *testing.T) {
	want := sampleSnapshot()

	big, err := Encode(want, WithBigEndian(), WithCompression(compress.CompressionNone))
	require.NoError(t, err)
	little, err := Encode(want, WithLittleEndian(), WithCompression(compress.CompressionNone))
	require.NoError(t, err)

	require.Equal(t, BigEndianMask, big[5])
	require.Zero(t, little[5])
	require.Equal(t, len(little), len(big))
	require.NotEqual(t, little, big)

	got, err := Decode(big)
	require.NoError(t, err)
	require.Equal(t, want.Results[0], got.Results[0])
	require.InDelta(t, 1.95, got.AUCs[0].Value, 0)
}

func TestEncode_NativeEndian(t *testing.T) {
	data, err := Encode(sampleSnapshot(), WithNativeEndian())
	require.NoError(t, err)

	h, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, endian.IsBigEndian(endian.CheckEndianness()), h.IsBigEndian())

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, sampleSnapshot().Results[0], got.Results[0])
}

func TestEncode_Empty(t *testing.T) {
	for _, s := range []*Snapshot{nil, {}} {
		data, err := Encode(s)
		require.NoError(t, err)

		got, err := Decode(data)
		require.NoError(t, err)
		require.Nil(t, got.Results)
		require.Nil(t, got.AUCs)
		require.Nil(t, got.Summary)
	}
}

func TestEncode_InvalidOption(t *testing.T) {
	_, err := Encode(sampleSnapshot(), WithCompression(compress.CompressionType(0)))
	require.ErrorContains(t, err, "snapshot options")
}

func TestEncodeWithStats(t *testing.T) {
	s := &Snapshot{}
	for i := range 500 {
		s.AUCs = append(s.AUCs, growth.AUC{
			Key:   series.GroupKey{Treatment: "plate-1", Replicate: i % 8},
			Value: 1.5,
			N:     96,
		})
	}

	data, stats, err := EncodeWithStats(s, WithCompression(compress.CompressionZstd))
	require.NoError(t, err)
	require.Equal(t, compress.CompressionZstd, stats.Algorithm)
	require.Equal(t, int64(len(data)-HeaderSize), stats.CompressedSize)
	require.Less(t, stats.CompressionRatio(), 0.5)
}

func TestDecode_Corrupted(t *testing.T) {
	valid, err := Encode(sampleSnapshot(), WithCompression(compress.CompressionNone))
	require.NoError(t, err)

	mutate := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return fn(b)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty", data: nil, wantErr: ErrInvalidHeaderSize},
		{name: "short_header", data: valid[:5], wantErr: ErrInvalidHeaderSize},
		{name: "bad_magic", data: mutate(func(b []byte) []byte { b[0] = 'X'; return b }), wantErr: ErrInvalidMagic},
		{name: "future_version", data: mutate(func(b []byte) []byte { b[4] = 2; return b }), wantErr: ErrUnsupportedVersion},
		{name: "reserved_flag", data: mutate(func(b []byte) []byte { b[5] = 0x02; return b }), wantErr: ErrReservedBits},
		{name: "reserved_byte", data: mutate(func(b []byte) []byte { b[7] = 1; return b }), wantErr: ErrReservedBits},
		{name: "header_only", data: valid[:HeaderSize], wantErr: ErrCorrupted},
		{name: "truncated_rows", data: valid[:HeaderSize+5], wantErr: ErrCorrupted},
		{name: "truncated_tail", data: valid[:len(valid)-3], wantErr: ErrCorrupted},
		{name: "trailing_bytes", data: append(mutate(func(b []byte) []byte { return b }), 0), wantErr: ErrCorrupted},
		{name: "bad_method", data: mutate(func(b []byte) []byte {
			// first result: count, key "wild-type" (1+9), replicate, N, six floats
			b[HeaderSize+1+10+1+1+48] = 0x7f
			return b
		}), wantErr: ErrCorrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, got)
		})
	}
}

func TestDecode_UnknownCodec(t *testing.T) {
	data, err := Encode(sampleSnapshot())
	require.NoError(t, err)

	data[6] = 0x09
	_, err = Decode(data)
	require.ErrorContains(t, err, "unsupported compression type")
}

func TestDecode_CorruptedCompressedBody(t *testing.T) {
	for _, c := range allCompressions[1:] {
		t.Run(c.String(), func(t *testing.T) {
			h := Header{Version: Version, Compression: c}
			data := append(h.Bytes(), []byte("this is not compressed data")...)

			_, err := Decode(data)
			assert.Error(t, err)
		})
	}
}

func TestDecode_DoesNotAliasInput(t *testing.T) {
	data, err := Encode(sampleSnapshot(), WithCompression(compress.CompressionNone))
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)

	for i := HeaderSize; i < len(data); i++ {
		data[i] = 0
	}
	require.Equal(t, "wild-type", got.Results[0].Key.Treatment)
	require.InDelta(t, 0.4, got.Results[0].Mu, 0)
}

func BenchmarkEncodeDecode(b *testing.B) {
	s := sampleSnapshot()
	for range 6 {
		s.Results = append(s.Results, s.Results...)
	}

	for _, c := range allCompressions {
		b.Run(c.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				data, _ := Encode(s, WithCompression(c))
				_, _ = Decode(data)
			}
		})
	}
}
