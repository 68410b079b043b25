package odyssey

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odysseylab/odyssey/cache"
	"github.com/odysseylab/odyssey/growth"
	"github.com/odysseylab/odyssey/series"
	"github.com/odysseylab/odyssey/units"
)

// plate has two replicates per treatment: "wt" doubles every time unit and
// "mut" halves every time unit.
func plate() *series.Table {
	var rows []series.Observation
	for rep := 1; rep <= 2; rep++ {
		scale := 1 + 0.1*float64(rep-1)
		for i := range 4 {
			t := float64(i)
			rows = append(rows,
				series.Observation{Time: t, Treatment: "wt", Replicate: rep, OD: scale * 0.1 * math.Exp2(t)},
				series.Observation{Time: t, Treatment: "mut", Replicate: rep, OD: scale * 0.8 * math.Exp2(-t)},
			)
		}
	}

	return series.NewTable(rows)
}

func TestAnalyze(t *testing.T) {
	a, err := Analyze(plate())
	require.NoError(t, err)

	require.Len(t, a.Results, 4)
	require.Len(t, a.AUCs, 4)
	require.Len(t, a.Flagged, 4)
	require.Len(t, a.Summary, 8)
	require.Equal(t, growth.MethodFull, a.Config.EffectiveMethod())

	// rows ordered by treatment, then replicate
	require.Equal(t, series.GroupKey{Treatment: "mut", Replicate: 1}, a.Results[0].Key)
	require.Equal(t, series.GroupKey{Treatment: "wt", Replicate: 2}, a.Results[3].Key)

	for i, f := range a.Flagged {
		require.Equal(t, a.Results[i], f.Result)
		require.Equal(t, a.Results[i].Key, a.AUCs[i].Key)
		if f.Key.Treatment == "wt" {
			assert.InDelta(t, math.Ln2, f.Mu, 1e-9)
			assert.InDelta(t, 1, f.DoublingTime, 1e-9)
			assert.True(t, f.Clean())
		} else {
			assert.InDelta(t, -math.Ln2, f.Mu, 1e-9)
			assert.Equal(t, []string{growth.FlagNonPositiveMu}, f.Flags)
		}
	}

	// wt/1: 0.1, 0.2, 0.4, 0.8
	assert.InDelta(t, 1.05, a.AUCs[2].Value, 1e-12)

	// mut at t=0: 0.8 and 0.88
	require.Equal(t, "mut", a.Summary[0].Treatment)
	assert.InDelta(t, 0.84, a.Summary[0].Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0032), a.Summary[0].SD, 1e-12)
	assert.Equal(t, 2, a.Summary[0].N)
}

func TestAnalyze_OptionsApplyToEveryStep(t *testing.T) {
	a, err := Analyze(plate(), growth.WithTimeWindow(0, 2), growth.WithR2Threshold(1.1))
	require.NoError(t, err)

	for i, r := range a.Results {
		require.Equal(t, growth.MethodExplicit, r.Method)
		require.Equal(t, 3, r.N)
		require.Equal(t, 3, a.AUCs[i].N)
		require.Contains(t, a.Flagged[i].Flags, growth.LowR2Flag(1.1))
	}
}

func TestAnalyze_InvalidOptions(t *testing.T) {
	_, err := Analyze(plate(), growth.WithMinPoints(1))
	require.ErrorIs(t, err, growth.ErrInvalidConfig)
	require.ErrorContains(t, err, "odyssey")

	_, err = Analyze(plate(), growth.WithTimeWindow(3, 1))
	require.Error(t, err)
}

func TestAnalyze_EmptyTable(t *testing.T) {
	a, err := Analyze(series.NewTable(nil))
	require.NoError(t, err)
	require.Empty(t, a.Results)
	require.Empty(t, a.AUCs)
	require.Empty(t, a.Summary)
}

func TestAnalyzeCSV(t *testing.T) {
	csv := "time,treatment,replicate,od\n" +
		"0,A,1,0.1\n1,A,1,0.2\n2,A,1,0.4\n3,A,1,0.8\n4,A,1,1.0\n"

	a, err := AnalyzeCSV(strings.NewReader(csv), growth.WithTimeWindow(0, 3))
	require.NoError(t, err)
	require.Len(t, a.Results, 1)
	require.InDelta(t, math.Ln2, a.Results[0].Mu, 1e-9)

	_, err = AnalyzeCSV(strings.NewReader("when,what\n1,2\n"))
	require.Error(t, err)
}

func TestAnalyzeCached(t *testing.T) {
	c, err := cache.New()
	require.NoError(t, err)

	first, hit, err := AnalyzeCached(c, plate())
	require.NoError(t, err)
	require.False(t, hit)

	second, hit, err := AnalyzeCached(c, plate())
	require.NoError(t, err)
	require.True(t, hit)

	require.Equal(t, first.Results, second.Results)
	require.Equal(t, first.AUCs, second.AUCs)
	require.Equal(t, first.Flagged, second.Flagged)
	require.Equal(t, first.Summary, second.Summary)

	direct, err := Analyze(plate())
	require.NoError(t, err)
	require.Equal(t, direct.Results, second.Results)

	// different settings miss
	_, hit, err = AnalyzeCached(c, plate(), growth.WithTimeWindow(0, 2))
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 2, c.Len())

	_, _, err = AnalyzeCached(c, plate(), growth.WithMinPoints(0))
	require.Error(t, err)
}

func TestFromSnapshot(t *testing.T) {
	a, err := Analyze(plate())
	require.NoError(t, err)

	b, err := FromSnapshot(a.Snapshot(), nil)
	require.NoError(t, err)
	require.Equal(t, a.Flagged, b.Flagged)

	strict, err := growth.NewConfig(growth.WithR2Threshold(1.1))
	require.NoError(t, err)
	c, err := FromSnapshot(a.Snapshot(), strict)
	require.NoError(t, err)
	require.Contains(t, c.Flagged[3].Flags, growth.LowR2Flag(1.1))
}

func TestAnalysis_InUnits(t *testing.T) {
	a, err := Analyze(plate())
	require.NoError(t, err)

	h := a.InUnits(units.Minutes, units.Hours)
	wt := h.Results[2]
	require.InDelta(t, math.Ln2*60, wt.Mu, 1e-9)
	require.InDelta(t, 1.0/60, wt.DoublingTime, 1e-12)
	require.InDelta(t, 3.0/60, wt.WindowEnd, 1e-12)
	require.InDelta(t, 1.05/60, h.AUCs[2].Value, 1e-12)
	require.InDelta(t, 1.0/60, h.Summary[1].Time, 1e-12)
	require.Equal(t, wt, h.Flagged[2].Result)
	require.Equal(t, a.Flagged[0].Flags, h.Flagged[0].Flags)

	// the original is untouched
	require.InDelta(t, math.Ln2, a.Results[2].Mu, 1e-9)
	require.InDelta(t, 1.0, a.Summary[1].Time, 0)
}
