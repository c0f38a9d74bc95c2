package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/pasenov/coverage/pkg/dataset"
)

// writeEvents writes a small Events tree: a scalar pileup and a jagged muon pt.
func writeEvents(t *testing.T, path string) {
	t.Helper()
	f, err := groot.Create(path)
	require.NoError(t, err)

	var (
		nPU   int32
		nMuon int32
		pt    []float32
	)
	w, err := rtree.NewWriter(f, TreeName, []rtree.WriteVar{
		{Name: "Pileup_nPU", Value: &nPU},
		{Name: "nMuon", Value: &nMuon},
		{Name: "Muon_pt", Value: &pt, Count: "nMuon"},
	})
	require.NoError(t, err)

	for _, ev := range [][]float32{{50, 150}, {}, {2000}} {
		nPU = int32(10 * len(ev))
		nMuon = int32(len(ev))
		pt = ev
		_, err := w.Write()
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestRootSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.root")
	writeEvents(t, path)

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, int64(3), src.Entries())
	require.Contains(t, src.Columns(), "Muon_pt")

	tab, err := src.ReadRange(1, 10, []string{"Muon_pt", "Pileup_nPU"})
	require.NoError(t, err)
	require.Equal(t, 2, tab.Events())
	require.Equal(t, [][]float64{{}, {2000}}, tab.Jagged["Muon_pt"])
	require.Equal(t, []float64{0, 10}, tab.Scalars["Pileup_nPU"])
	require.Equal(t, dataset.Float32, tab.DTypes["Muon_pt"])
	require.Equal(t, dataset.Int, tab.DTypes["Pileup_nPU"])

	_, err = src.ReadRange(0, 1, []string{"Jet_pt"})
	require.ErrorIs(t, err, ErrNoColumn)
}

func TestOpenRootMissingTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.root")
	f, err := groot.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = OpenRoot(path)
	require.Error(t, err)
}
