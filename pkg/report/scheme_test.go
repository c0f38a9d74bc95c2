package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOccupancyPerMillion(t *testing.T) {
	values := []float64{50, 150, 2000, 99.99, 100}
	got := Occupancy(values, PtMass, Scale(500000))
	require.Equal(t, []float64{6, 2, 2}, got)
}

func TestRangeEdges(t *testing.T) {
	require.True(t, PtMass.Ranges[0].Contains(0))
	require.True(t, PtMass.Ranges[0].Contains(100))
	require.False(t, PtMass.Ranges[1].Contains(100))
	require.True(t, PtMass.Ranges[1].Contains(1000))
	require.False(t, PtMass.Ranges[2].Contains(1000))
	require.False(t, PtMass.Ranges[0].Contains(-1), "negative values fall in no bucket")

	require.True(t, DeltaR.Ranges[0].Contains(0.39))
	require.True(t, DeltaR.Ranges[1].Contains(0.4))
	require.True(t, Pileup.Ranges[0].Contains(40))
	require.True(t, Pileup.Ranges[1].Contains(60))
	require.True(t, Pileup.Ranges[2].Contains(61))

	for _, s := range []Scheme{PtMass, DeltaR, Pileup} {
		require.Equal(t, []float64{0, 0, 0}[:len(s.Ranges)], Occupancy([]float64{math.NaN()}, s, 1), s.Name)
	}
}

func TestScale(t *testing.T) {
	require.Equal(t, 1.0, Scale(1000000))
	require.Zero(t, Scale(0))
	require.Zero(t, Scale(-5))
}

func TestSchemeLookup(t *testing.T) {
	require.Equal(t, DeltaR.Name, SchemeFor("Jet_GenMuonDr").Name)
	require.Equal(t, Pileup.Name, SchemeFor("Pileup_nPU").Name)
	require.Equal(t, PtMass.Name, SchemeFor("Muon_pt").Name)

	s, err := SchemeByName("pileup")
	require.NoError(t, err)
	require.Len(t, s.Ranges, 3)
	_, err = SchemeByName("eta")
	require.Error(t, err)
}

func TestCatalog(t *testing.T) {
	require.Len(t, Models(), 10)
	require.Equal(t, "electrons", Models()[0])

	mu := Catalog("muons")
	require.Len(t, mu, 11)
	require.Equal(t, Entry{Model: "muons", Object: "Muon", Variable: "Muon_pt", Scheme: PtMass}, mu[0])
	require.Len(t, Catalog(), len(Catalog(Models()...)))
	require.Empty(t, Catalog("nothing"))
}
