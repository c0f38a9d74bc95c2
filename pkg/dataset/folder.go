package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pasenov/coverage/pkg/core"
)

// Files of a dataset folder.
const (
	DataFile       = "data.npy"
	EffFile        = "data_eff.npy"
	ConfigFile     = "config.json"
	ConfigYAMLFile = "config.yaml"
	LedgerFile     = "event_counts.json"
	FiguresDir     = "transformed_figures"
	MetricsFile    = "metrics.prom"
)

// PrepareFolder creates folder, or clears the numeric artifacts of a previous run.
func PrepareFolder(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".npy") {
			if err := os.Remove(filepath.Join(folder, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Assemble shuffles the primary and efficiency arrays with independent permutations
// when more than one source was merged. It reports whether it shuffled.
func Assemble(train, eff *core.Matrix, nSources int) bool {
	if nSources <= 1 {
		return false
	}
	train.Shuffle()
	if eff != nil {
		eff.Shuffle()
	}
	return true
}

// Persist writes data.npy and, when it has rows, data_eff.npy.
func Persist(folder string, train, eff *core.Matrix) error {
	if err := WriteArray(filepath.Join(folder, DataFile), train); err != nil {
		return fmt.Errorf("persist %s: %w", DataFile, err)
	}
	if eff != nil && eff.R > 0 {
		if err := WriteArray(filepath.Join(folder, EffFile), eff); err != nil {
			return fmt.Errorf("persist %s: %w", EffFile, err)
		}
	}
	return nil
}

// Dataset is a persisted folder opened for reading.
type Dataset struct {
	Folder  string
	Config  *DatasetConfig
	Data    *core.Matrix
	Columns map[string]int
}

// Open loads config.json and data.npy and checks they describe the same columns.
func Open(folder string) (*Dataset, error) {
	cfg, err := LoadConfig(folder)
	if err != nil {
		return nil, err
	}
	data, err := ReadArray(filepath.Join(folder, DataFile))
	if err != nil {
		return nil, err
	}
	cols, err := cfg.ColumnMap()
	if err != nil {
		return nil, err
	}
	if data.C != len(cols) {
		return nil, fmt.Errorf("%w: %s has %d columns, config lists %d", ErrColumnCount, DataFile, data.C, len(cols))
	}
	return &Dataset{Folder: folder, Config: cfg, Data: data, Columns: cols}, nil
}

// Events is the number of accumulated rows.
func (d *Dataset) Events() int { return d.Data.R }

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, bool) {
	j, ok := d.Columns[name]
	if !ok {
		return nil, false
	}
	return d.Data.Col(j), true
}

// Exists reports whether folder holds the artifacts Open needs.
func Exists(folder string) bool {
	for _, f := range []string{ConfigFile, DataFile} {
		if _, err := os.Stat(filepath.Join(folder, f)); errors.Is(err, fs.ErrNotExist) {
			return false
		}
	}
	return true
}
