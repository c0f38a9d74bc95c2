package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pasenov/coverage/pkg/data"
	"github.com/pasenov/coverage/pkg/dataset"
)

func muonConfig() *dataset.DatasetConfig {
	return dataset.NewConfig("muons", "vector",
		[]dataset.FeatureSpec{{Name: "GenMuon_pt", Role: dataset.Conditioning}, {Name: "Pileup_nPU", Role: dataset.Conditioning}},
		[]dataset.FeatureSpec{{Name: "Matched_Muon_pt", Role: dataset.Target}},
		&dataset.Matching{
			TargetMask:        dataset.One("GenMuon_isReco"),
			ConditioningIndex: dataset.One("GenMuon_objectIndex"),
			TargetIndex:       dataset.One("GenMuon_muonIdx"),
		})
}

func memOpener(t *testing.T) func(string) (data.Source, error) {
	return func(path string) (data.Source, error) {
		src, err := data.NewMemSource(path, muonTable(0))
		require.NoError(t, err)
		return src, nil
	}
}

func muonDriver(t *testing.T) *Driver {
	stages, err := Build(muonSpecs())
	require.NoError(t, err)
	return &Driver{
		Config:    muonConfig(),
		Stages:    stages,
		BatchSize: 2,
		Folder:    t.TempDir(),
		Open:      memOpener(t),
	}
}

func TestDriverMatchedRows(t *testing.T) {
	d := muonDriver(t)
	res, err := d.Run(context.Background(), []string{"/eos/run/A.root"})
	require.NoError(t, err)

	require.Equal(t, 1, res.Sources)
	require.Equal(t, 2, res.Batches)
	require.Equal(t, int64(3), res.Events)
	require.Equal(t, []float64{10, 40, 11, 30, 60, 31}, res.Train.Data)
	require.Equal(t, 3, res.Eff.C)
	require.Equal(t, []float64{10, 40, 1, 20, 40, 0, 30, 60, 1}, res.Eff.Data)
	require.Equal(t, map[string]dataset.DType{"Matched_Muon_pt": dataset.Float32}, d.Config.OutTypes)

	l := dataset.LoadLedger(filepath.Join(d.Folder, dataset.LedgerFile), nil)
	require.Equal(t, dataset.Ledger{"A.root": 3}, l)
}

func TestDriverSeveralSources(t *testing.T) {
	d := muonDriver(t)
	res, err := d.Run(context.Background(), []string{"A.root", "B.root"})
	require.NoError(t, err)
	require.Equal(t, 4, res.Train.R)
	require.Equal(t, 6, res.Eff.R)
	require.Equal(t, int64(6), dataset.LoadLedger(filepath.Join(d.Folder, dataset.LedgerFile), nil).Total())
}

func TestDriverDebugDump(t *testing.T) {
	d := muonDriver(t)
	d.Debug = true
	_, err := d.Run(context.Background(), []string{"A.root", "B.root"})
	require.NoError(t, err)
	for j := 0; j < 4; j++ {
		require.FileExists(t, DebugFile(d.Folder, j))
	}
	require.NoFileExists(t, DebugFile(d.Folder, 4))
}

func TestDriverMissingColumn(t *testing.T) {
	d := muonDriver(t)
	d.Config.TargetFeatures = []string{"Muon_eta"}
	_, err := d.Run(context.Background(), []string{"A.root"})
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "Muon_eta", ce.Column)
	require.Equal(t, "training_dataset", ce.Stage)
}

func TestDriverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := muonDriver(t).Run(ctx, []string{"A.root"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDriverOpenError(t *testing.T) {
	d := muonDriver(t)
	d.Open = func(path string) (data.Source, error) { return nil, fmt.Errorf("no such file %s", path) }
	_, err := d.Run(context.Background(), []string{"A.root"})
	require.ErrorContains(t, err, "A.root")
}

// With several masks the placeholder records which one matched; unmatched rows
// only reach the efficiency array, with placeholder -1.
func TestHeterogeneousPlaceholder(t *testing.T) {
	cfg := dataset.NewConfig("electrons", "vector",
		[]dataset.FeatureSpec{{Name: "Electron_pt", Role: dataset.Conditioning}},
		[]dataset.FeatureSpec{{Name: "Target_pt", Role: dataset.Target}},
		&dataset.Matching{
			TargetMask:        dataset.Many("fromEle", "fromJet"),
			ConditioningIndex: dataset.One("idx"),
			TargetIndex:       dataset.Many("eleIdx", "jetIdx"),
		})
	tab := data.NewTable(0, 3)
	tab.Scalars["fromEle"] = []float64{1, 0, 0}
	tab.Scalars["fromJet"] = []float64{0, 1, 0}
	tab.Scalars["Electron_pt"] = []float64{5, 6, 7}
	tab.Scalars["Target_pt"] = []float64{50, 60, 70}

	b, err := TrainingDataset{Config: cfg}.Run(newBatch(t, tab))
	require.NoError(t, err)
	b, err = EfficiencyDataset{Config: cfg}.Run(b)
	require.NoError(t, err)

	require.Equal(t, []float64{0, 5, 50, 1, 6, 60}, b.Training)
	require.Equal(t, []float64{0, 5, 1, 1, 6, 1, -1, 7, 0}, b.Efficiency)
	require.Equal(t, []string{dataset.Placeholder, "Electron_pt", EfficiencyTarget},
		EfficiencyDataset{Config: cfg}.Columns())
}

func TestScalarDatasetHasNoEfficiency(t *testing.T) {
	cfg := dataset.NewConfig("met", "scalar",
		[]dataset.FeatureSpec{{Name: "GenHT", Role: dataset.Conditioning}},
		[]dataset.FeatureSpec{{Name: "MET_pt", Role: dataset.Target}}, nil)
	tab := data.NewTable(0, 2)
	tab.Jagged["GenJet_pt"] = [][]float64{{10, 20}, {5}}
	tab.Scalars["MET_pt"] = []float64{3, 4}
	stages, err := Build([]StageSpec{{Kind: "reduce", Name: "GenHT", Op: "sum", Inputs: []string{"GenJet_pt"}}})
	require.NoError(t, err)

	d := &Driver{
		Config: cfg,
		Stages: stages,
		Folder: t.TempDir(),
		Open: func(path string) (data.Source, error) {
			return data.NewMemSource(path, tab)
		},
	}
	require.False(t, d.Efficiency())
	res, err := d.Run(context.Background(), []string{"met.csv"})
	require.NoError(t, err)
	require.Nil(t, res.Eff)
	require.Equal(t, []float64{30, 3, 5, 4}, res.Train.Data)
}
