package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/require"

	"github.com/pasenov/coverage/pkg/core"
)

func TestArrayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFile)
	m := core.FromSlice([][]float64{{1, 2.5, -3}, {4, 5, 6e10}})
	require.NoError(t, WriteArray(path, m))

	got, err := ReadArray(path)
	require.NoError(t, err)
	require.Equal(t, m.R, got.R)
	require.Equal(t, m.C, got.C)
	require.Equal(t, m.Data, got.Data)

	require.ErrorIs(t, WriteArray(path, core.Empty(0)), ErrEmptyArray)
}

func TestArrayWithoutRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFile)
	require.NoError(t, WriteArray(path, core.Empty(3)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r, err := npyio.NewReader(f)
	require.NoError(t, err)
	require.Equal(t, "<f8", r.Header.Descr.Type)
	require.Equal(t, []int{0, 3}, r.Header.Descr.Shape)

	got, err := ReadArray(path)
	require.NoError(t, err)
	require.Equal(t, 0, got.R)
	require.Equal(t, 3, got.C)
}

func TestAssembleKeepsRows(t *testing.T) {
	train := core.FromSlice([][]float64{{1}, {2}, {3}, {4}})
	eff := core.FromSlice([][]float64{{10, 1}, {20, 0}})
	require.False(t, Assemble(train, eff, 1))
	require.Equal(t, []float64{1, 2, 3, 4}, train.Data)

	require.True(t, Assemble(train, eff, 2))
	got := append([]float64(nil), train.Data...)
	sort.Float64s(got)
	require.Equal(t, []float64{1, 2, 3, 4}, got)
	for i := 0; i < eff.R; i++ {
		require.Equal(t, eff.At(i, 0) == 10, eff.At(i, 1) == 1)
	}
}

func writeFolder(t *testing.T, dir string, cfg *DatasetConfig, m *core.Matrix) {
	t.Helper()
	require.NoError(t, PrepareFolder(dir))
	require.NoError(t, Persist(dir, m, nil))
	require.NoError(t, SaveConfig(dir, cfg))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig("jets", "vector", specs(Conditioning, "gpt"), specs(Target, "pt", "eta"), nil)
	writeFolder(t, dir, cfg, core.FromSlice([][]float64{{1, 2, 3}, {4, 5, 6}}))

	require.True(t, Exists(dir))
	ds, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Events())
	col, ok := ds.Column("eta")
	require.True(t, ok)
	require.Equal(t, []float64{3, 6}, col)
	_, ok = ds.Column("phi")
	require.False(t, ok)
	require.NoFileExists(t, filepath.Join(dir, EffFile))
}

func TestOpenColumnMismatch(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig("jets", "vector", specs(Conditioning, "gpt"), specs(Target, "pt"), nil)
	writeFolder(t, dir, cfg, core.FromSlice([][]float64{{1, 2, 3}}))

	_, err := Open(dir)
	require.ErrorIs(t, err, ErrColumnCount)
}

func TestPrepareFolderClearsArrays(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFile), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, LedgerFile), []byte("{}"), 0o644))
	require.NoError(t, PrepareFolder(dir))
	require.NoFileExists(t, filepath.Join(dir, DataFile))
	require.FileExists(t, filepath.Join(dir, LedgerFile))
	require.False(t, Exists(dir))
}

func TestWriteCSV(t *testing.T) {
	cfg := NewConfig("electrons", "vector", specs(Conditioning, "pt"), specs(Target, "ept"),
		&Matching{TargetMask: Many("m1", "m2"), ConditioningIndex: One("ci"), TargetIndex: Many("t1", "t2")})
	m := core.FromSlice([][]float64{{0, 1.5, 2}, {1, 3, 4}})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cfg, m, 1))
	require.Equal(t, "placeholder,pt,ept\n0.000000,1.500000,2.000000\n", buf.String())
	require.Equal(t, Placeholder, cfg.Features()[0], "header does not rename the feature")

	require.ErrorIs(t, WriteCSV(&buf, cfg, core.NewMatrix(1, 2), 0), ErrColumnCount)
}
