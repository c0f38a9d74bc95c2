package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPercentileInterpolates(t *testing.T) {
	x := []float64{4, 1, 3, 2, 5}
	require.Equal(t, 1.0, Percentile(x, 0))
	require.Equal(t, 5.0, Percentile(x, 100))
	require.Equal(t, 3.0, Percentile(x, 50))
	require.InDelta(t, 4.96, Percentile(x, 99), 1e-12)
	require.Equal(t, 0.0, Percentile(nil, 50))
}

func TestFiniteMeanStd(t *testing.T) {
	x := []float64{1, math.NaN(), 3, math.Inf(1)}
	f := Finite(x)
	require.Equal(t, []float64{1, 3}, f)
	m, s := MeanStd(f)
	require.Equal(t, 2.0, m)
	require.Equal(t, 1.0, s)
}

func TestScalers(t *testing.T) {
	var s StandardScaler
	s.Fit([]float64{7, 7, 7})
	require.Equal(t, 1.0, s.Std, "constant column keeps unit std")
	require.Equal(t, 0.0, s.Transform(7))

	var mm MinMaxScaler
	mm.Fit([]float64{2, 4, math.NaN()})
	require.Equal(t, 0.5, mm.Transform(3))
	require.InDelta(t, 3.0, mm.Inverse(mm.Transform(3)), 1e-12)
}

func TestBinEdges(t *testing.T) {
	e := BinEdges([]float64{0, 10, math.NaN()}, 5)
	require.Equal(t, []float64{0, 2, 4, 6, 8, 10}, e)

	flat := BinEdges([]float64{3, 3}, 2)
	require.Equal(t, []float64{2.5, 3, 3.5}, flat)
}

func TestClipBounds(t *testing.T) {
	lo, hi := ClipBounds([]float64{1, 2, 3, 4, 5, math.NaN()}, 0, 100)
	require.Equal(t, 1.0, lo)
	require.Equal(t, 5.0, hi)
	require.Equal(t, 2.0, Clamp(1, 2, 3))
	require.True(t, math.IsNaN(Clamp(math.NaN(), 0, 1)))
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{1, math.NaN(), 3, 5, math.Inf(-1)})
	require.Equal(t, 5, s.Count)
	require.Equal(t, 2, s.Missing)
	require.Equal(t, 0.4, s.MissingRatio())
	require.Equal(t, 3.0, s.Mean)
	require.Equal(t, 3.0, s.Median)
	require.Equal(t, 1.0, s.Min)
	require.Equal(t, 5.0, s.Max)

	require.Zero(t, Describe(nil).MissingRatio())
}
