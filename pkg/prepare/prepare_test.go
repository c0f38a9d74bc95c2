package prepare

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pasenov/coverage/pkg/data"
	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/registry"
)

const jetsSet = `
sets:
  - name: test
    datasets:
      - name: jets
        type: vector
        conditioning: [{name: GenJet_pt}, {name: GenJet_Pileup_nPU}]
        target: [{name: Jet_pt}]
        matching:
          target_mask: GenJet_isReco
          conditioning_index: GenJet_objectIndex
          target_index: GenJet_jetIdx
        stages:
          - {kind: explode, prefix: GenJet, columns: [GenJet_pt, GenJet_jetIdx]}
          - {kind: define, name: GenJet_isReco, op: ge, inputs: [GenJet_jetIdx]}
          - {kind: define, name: GenJet_Pileup_nPU, op: copy, inputs: [Pileup_nPU]}
          - {kind: gather, index: GenJet_jetIdx, columns: [Jet_pt]}
        processors:
          GenJet_pt: [{kind: log1p}, {kind: standard}]
          GenJet_Pileup_nPU: [{kind: standard}]
          Jet_pt: [{kind: log1p}, {kind: standard}]
      - name: wide
        type: scalar
        conditioning: [{name: a}, {name: b}, {name: c}]
        target: [{name: d}]
`

func jetsType(t *testing.T, name string) *registry.DatasetType {
	t.Helper()
	reg, err := registry.Builtin()
	require.NoError(t, err)
	require.NoError(t, reg.Load(strings.NewReader(jetsSet)))
	typ, err := reg.Lookup("test", name)
	require.NoError(t, err)
	return typ
}

// jetEvents has two generated jets per event; the first is reconstructed.
func jetEvents(path string) (data.Source, error) {
	const n = 40
	tab := data.NewTable(0, n)
	for i := 0; i < n; i++ {
		pt := float64(20 + 3*i)
		tab.Jagged["GenJet_pt"] = append(tab.Jagged["GenJet_pt"], []float64{pt, pt / 2})
		tab.Jagged["GenJet_jetIdx"] = append(tab.Jagged["GenJet_jetIdx"], []float64{0, -1})
		tab.Jagged["Jet_pt"] = append(tab.Jagged["Jet_pt"], []float64{pt * 1.1})
		tab.Scalars["Pileup_nPU"] = append(tab.Scalars["Pileup_nPU"], float64(i%60))
	}
	tab.DTypes["Jet_pt"] = dataset.Float32
	return data.NewMemSource(path, tab)
}

func TestRunExtractsAndFits(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(context.Background(), Options{
		Folder:    dir,
		Type:      jetsType(t, "jets"),
		Inputs:    []string{"/data/a.root", "/data/b.root"},
		BatchSize: 16,
		SkipPlots: true,
		Open:      jetEvents,
	})
	require.NoError(t, err)
	require.Equal(t, 80, res.Rows)
	require.Equal(t, 160, res.EffRows)
	require.True(t, res.Shuffled)
	require.Equal(t, 2, res.Extraction.Sources)
	require.Equal(t, 6, res.Extraction.Batches)
	require.Empty(t, res.Diagnostics.NonFinite)
	require.NotEmpty(t, res.Config.RunID)

	for _, f := range []string{dataset.DataFile, dataset.EffFile, dataset.ConfigFile,
		dataset.ConfigYAMLFile, dataset.LedgerFile, dataset.MetricsFile} {
		require.FileExists(t, filepath.Join(dir, f))
	}
	require.NoDirExists(t, filepath.Join(dir, dataset.FiguresDir))

	ds, err := dataset.Open(dir)
	require.NoError(t, err)
	require.Equal(t, 80, ds.Events())
	require.Len(t, ds.Config.TransformParams, 3)
	require.Equal(t, dataset.Float32, ds.Config.OutTypes["Jet_pt"])

	eff, err := dataset.ReadArray(filepath.Join(dir, dataset.EffFile))
	require.NoError(t, err)
	require.Equal(t, 3, eff.C)
	matched := 0.0
	for _, v := range eff.Col(2) {
		matched += v
	}
	require.Equal(t, 80.0, matched)

	l := dataset.LoadLedger(filepath.Join(dir, dataset.LedgerFile), nil)
	require.Equal(t, dataset.Ledger{"a.root": 40, "b.root": 40}, l)
}

// unmatchedJets has generated jets but no reconstructed one.
func unmatchedJets(path string) (data.Source, error) {
	const n = 12
	tab := data.NewTable(0, n)
	for i := 0; i < n; i++ {
		tab.Jagged["GenJet_pt"] = append(tab.Jagged["GenJet_pt"], []float64{float64(30 + i)})
		tab.Jagged["GenJet_jetIdx"] = append(tab.Jagged["GenJet_jetIdx"], []float64{-1})
		tab.Jagged["Jet_pt"] = append(tab.Jagged["Jet_pt"], nil)
		tab.Scalars["Pileup_nPU"] = append(tab.Scalars["Pileup_nPU"], float64(i))
	}
	return data.NewMemSource(path, tab)
}

func TestRunWithoutMatchedRows(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(context.Background(), Options{Folder: dir, Type: jetsType(t, "jets"),
		Inputs: []string{"a.root"}, Open: unmatchedJets})
	require.NoError(t, err)
	require.Equal(t, 0, res.Rows)
	require.Equal(t, 12, res.EffRows)
	require.Equal(t, 0, res.Diagnostics.Rows)
	require.False(t, res.Diagnostics.Plotted)

	for _, f := range []string{dataset.DataFile, dataset.EffFile, dataset.ConfigFile,
		dataset.ConfigYAMLFile, dataset.LedgerFile} {
		require.FileExists(t, filepath.Join(dir, f))
	}
	ds, err := dataset.Open(dir)
	require.NoError(t, err)
	require.Equal(t, 0, ds.Events())
	require.Equal(t, 3, ds.Data.C)
	require.Len(t, ds.Config.TransformParams, 3)

	l := dataset.LoadLedger(filepath.Join(dir, dataset.LedgerFile), nil)
	require.Equal(t, dataset.Ledger{"a.root": 12}, l)
}

func TestRunSkipExtraction(t *testing.T) {
	dir := t.TempDir()
	typ := jetsType(t, "jets")
	_, err := Run(context.Background(), Options{Folder: dir, Type: typ, Inputs: []string{"a.root"},
		SkipPlots: true, Open: jetEvents})
	require.NoError(t, err)

	res, err := Run(context.Background(), Options{Folder: dir, Type: typ, Inputs: []string{"a.root"},
		SkipExtraction: true, SkipPlots: true, Open: jetEvents})
	require.NoError(t, err)
	require.Nil(t, res.Extraction)
	require.Equal(t, 40, res.Rows)
	require.Equal(t, dataset.Float32, res.Config.OutTypes["Jet_pt"])

	// a type with a different column count cannot reuse the array
	_, err = Run(context.Background(), Options{Folder: dir, Type: jetsType(t, "wide"), Inputs: []string{"a.root"},
		SkipExtraction: true, SkipPlots: true, Open: jetEvents})
	require.ErrorIs(t, err, dataset.ErrColumnCount)
}

func TestRunWithPlots(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(context.Background(), Options{Folder: dir, Type: jetsType(t, "jets"),
		Inputs: []string{"a.root"}, Open: jetEvents})
	require.NoError(t, err)
	require.True(t, res.Diagnostics.Plotted)
	require.FileExists(t, filepath.Join(dir, dataset.FiguresDir, "Jet_pt_identity_check.png"))
	require.FileExists(t, filepath.Join(dir, dataset.FiguresDir, "GenJet_pt_original.png"))
}

func TestRunRejectsEmptyOptions(t *testing.T) {
	_, err := Run(context.Background(), Options{Folder: t.TempDir(), Inputs: []string{"a.root"}})
	require.Error(t, err)
	_, err = Run(context.Background(), Options{Folder: t.TempDir(), Type: jetsType(t, "jets")})
	require.Error(t, err)
}
