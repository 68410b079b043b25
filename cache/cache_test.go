package cache

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odysseylab/odyssey/compress"
	"github.com/odysseylab/odyssey/growth"
	"github.com/odysseylab/odyssey/series"
	"github.com/odysseylab/odyssey/snapshot"
)

func testTable() *series.Table {
	var rows []series.Observation
	for i := range 6 {
		t := float64(i)
		rows = append(rows,
			series.Observation{Time: t, Treatment: "wt", Replicate: 1, OD: 0.05 * math.Exp(0.4*t)},
			series.Observation{Time: t, Treatment: "wt", Replicate: 2, OD: 0.05 * math.Exp(0.38*t)},
		)
	}

	return series.NewTable(rows)
}

func testSnapshot(t *testing.T, tbl *series.Table) *snapshot.Snapshot {
	t.Helper()

	results, err := growth.FitGrowthRates(tbl)
	require.NoError(t, err)
	aucs, err := growth.ComputeAUC(tbl)
	require.NoError(t, err)

	return &snapshot.Snapshot{Results: results, AUCs: aucs, Summary: series.MeanSD(tbl)}
}

func TestKey(t *testing.T) {
	tbl := testTable()
	base := Key(tbl, nil)

	require.Equal(t, base, Key(testTable(), growth.DefaultConfig()), "nil config hashes as default")

	cfg, err := growth.NewConfig(growth.WithAutoWindow())
	require.NoError(t, err)
	require.NotEqual(t, base, Key(tbl, cfg), "settings change the key")

	changed := testTable()
	changed.Rows[3].OD += 1e-9
	require.NotEqual(t, base, Key(changed, nil), "data change the key")

	renamed := testTable()
	renamed.Rows[0].Treatment = "w"
	require.NotEqual(t, base, Key(renamed, nil))

	require.Equal(t, Key(nil, nil), Key(series.NewTable(nil), nil))
}

func TestCache_HitReturnsIdenticalResults(t *testing.T) {
	tbl := testTable()
	want := testSnapshot(t, tbl)

	for _, ct := range []compress.CompressionType{compress.CompressionNone, compress.CompressionZstd, compress.CompressionS2, compress.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			c, err := New(WithCompression(ct))
			require.NoError(t, err)

			key := Key(tbl, nil)
			_, ok := c.Get(key)
			require.False(t, ok)

			require.NoError(t, c.Put(key, want))
			got, ok := c.Get(key)
			require.True(t, ok)
			require.Equal(t, want, got)
			require.NotSame(t, want, got)

			st := c.Stats()
			require.Equal(t, uint64(1), st.Hits)
			require.Equal(t, uint64(1), st.Misses)
			require.Positive(t, st.Bytes)
		})
	}
}

func TestCache_HitIsACopy(t *testing.T) {
	tbl := testTable()
	c, err := New()
	require.NoError(t, err)

	key := Key(tbl, nil)
	require.NoError(t, c.Put(key, testSnapshot(t, tbl)))

	first, ok := c.Get(key)
	require.True(t, ok)
	first.Results[0].Mu = -1

	second, ok := c.Get(key)
	require.True(t, ok)
	require.InDelta(t, 0.4, second.Results[0].Mu, 1e-9)
}

func TestCache_FIFOEviction(t *testing.T) {
	c, err := New(WithMaxEntries(2))
	require.NoError(t, err)

	snap := &snapshot.Snapshot{AUCs: []growth.AUC{{Value: 1}}}
	require.NoError(t, c.Put(1, snap))
	require.NoError(t, c.Put(2, snap))

	// reading does not refresh an entry
	_, ok := c.Get(1)
	require.True(t, ok)

	require.NoError(t, c.Put(3, snap))
	require.Equal(t, 2, c.Len())

	_, ok = c.Get(1)
	require.False(t, ok, "oldest entry evicted")
	_, ok = c.Get(2)
	require.True(t, ok)
	_, ok = c.Get(3)
	require.True(t, ok)
	require.Equal(t, uint64(1), c.Stats().Evictions)

	// replacing an entry moves it to the back of the queue
	require.NoError(t, c.Put(2, snap))
	require.NoError(t, c.Put(4, snap))
	_, ok = c.Get(3)
	require.False(t, ok)
	_, ok = c.Get(2)
	require.True(t, ok)

	c.Clear()
	require.Zero(t, c.Len())
	require.Zero(t, c.Stats().Bytes)
}

func TestCache_GetOrCompute(t *testing.T) {
	tbl := testTable()
	c, err := New()
	require.NoError(t, err)

	calls := 0
	compute := func() (*snapshot.Snapshot, error) {
		calls++
		return testSnapshot(t, tbl), nil
	}

	key := Key(tbl, nil)
	first, hit, err := c.GetOrCompute(key, compute)
	require.NoError(t, err)
	require.False(t, hit)

	second, hit, err := c.GetOrCompute(key, compute)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 1, calls)
	require.Equal(t, first, second)

	errBoom := errors.New("boom")
	_, _, err = c.GetOrCompute(key+1, func() (*snapshot.Snapshot, error) { return nil, errBoom })
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 1, c.Len())
}

func TestCache_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := New(WithLogger(logger), WithCompression(compress.CompressionS2))
	require.NoError(t, err)

	_, _ = c.Get(7)
	require.NoError(t, c.Put(7, &snapshot.Snapshot{}))
	_, _ = c.Get(7)

	out := buf.String()
	assert.True(t, strings.Contains(out, `msg="cache miss" key=7`), out)
	assert.True(t, strings.Contains(out, "codec=S2"), out)
	assert.True(t, strings.Contains(out, `msg="cache hit" key=7`), out)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithMaxEntries(0))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(WithCompression(compress.CompressionType(0)))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCache_Concurrent(t *testing.T) {
	c, err := New(WithMaxEntries(8))
	require.NoError(t, err)

	snap := &snapshot.Snapshot{AUCs: []growth.AUC{{Key: series.GroupKey{Treatment: "wt", Replicate: 1}, Value: 2.5, N: 6}}}

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := uint64(i % 12)
			for range 50 {
				if got, ok := c.Get(key); ok && got.AUCs[0].Value != 2.5 {
					t.Errorf("unexpected value %v", got.AUCs[0].Value)
				}
				if err := c.Put(key, snap); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 8)
}
