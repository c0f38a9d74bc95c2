package report

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/logging"
)

// Norm selects the event count occupancies are scaled to.
type Norm string

const (
	// NormRows uses the row count of data.npy.
	NormRows Norm = "rows"
	// NormLedger uses the sum of event_counts.json.
	NormLedger Norm = "ledger"
)

// ParseNorm validates a normalization name.
func ParseNorm(s string) (Norm, error) {
	switch n := Norm(s); n {
	case NormRows, NormLedger:
		return n, nil
	}
	return "", fmt.Errorf("report: unknown normalization %q", s)
}

// countFunc returns the scaled occupancy of e in one input, or the marker to print instead.
type countFunc func(e Entry) ([]float64, string)

// Reporter builds occupancy tables from persisted dataset folders.
type Reporter struct {
	// PerModel treats every input as a root holding one subfolder per catalog model.
	PerModel bool
	Norm     Norm
	Models   []string
	// Workers bounds concurrent folder loads; 0 means one per folder.
	Workers int
	Log     *zap.Logger
}

type folderView struct {
	ds    *dataset.Dataset
	scale float64
}

func (v *folderView) counts(e Entry) ([]float64, string) {
	if v == nil {
		return nil, NotInFolder
	}
	col, ok := v.ds.Column(e.Variable)
	if !ok {
		return nil, NotInDataset
	}
	return Occupancy(col, e.Scheme, v.scale), ""
}

// Run loads every input folder concurrently and tabulates the catalog against them.
// Missing folders or artifacts are reported in the cells; unreadable artifacts are errors.
func (r *Reporter) Run(ctx context.Context, inputs []string) (*Table, error) {
	log := logging.OrNop(r.Log)
	entries := Catalog(r.Models...)

	models := []string{""}
	if r.PerModel {
		models = Models()
		if len(r.Models) > 0 {
			models = r.Models
		}
	}

	var mu sync.Mutex
	views := make([]map[string]*folderView, len(inputs))
	for i := range views {
		views[i] = map[string]*folderView{}
	}

	g, ctx := errgroup.WithContext(ctx)
	if r.Workers > 0 {
		g.SetLimit(r.Workers)
	}
	for i, in := range inputs {
		i, in := i, in
		for _, m := range models {
			m := m
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				folder := filepath.Join(in, m)
				v, err := r.load(folder, log)
				if err != nil {
					return err
				}
				mu.Lock()
				views[i][m] = v
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cells := make([]countFunc, len(inputs))
	for i := range inputs {
		i := i
		cells[i] = func(e Entry) ([]float64, string) {
			m := ""
			if r.PerModel {
				m = e.Model
			}
			return views[i][m].counts(e)
		}
	}
	return buildTable(entries, inputs, cells), nil
}

// load opens one folder; a folder without artifacts yields a nil view.
func (r *Reporter) load(folder string, log *zap.Logger) (*folderView, error) {
	if !dataset.Exists(folder) {
		log.Debug("no dataset in folder", zap.String("folder", folder))
		return nil, nil
	}
	ds, err := dataset.Open(folder)
	if err != nil {
		return nil, fmt.Errorf("report: %s: %w", folder, err)
	}
	total := int64(ds.Events())
	if r.Norm == NormLedger {
		l := dataset.LoadLedger(filepath.Join(folder, dataset.LedgerFile), log)
		if t := l.Total(); t > 0 {
			total = t
		} else {
			log.Warn("event count ledger empty, normalizing to array rows",
				zap.String("folder", folder), zap.Int64("rows", total))
		}
	}
	log.Debug("loaded dataset", zap.String("folder", folder),
		zap.Int("rows", ds.Events()), zap.Int64("norm_events", total))
	return &folderView{ds: ds, scale: Scale(total)}, nil
}

// buildTable emits, per entry, one row per range. An entry whose scheme has no ranges
// gets a single row, and only when some input lacks the variable.
func buildTable(entries []Entry, inputs []string, cells []countFunc) *Table {
	t := &Table{Inputs: inputs}
	for _, e := range entries {
		counts := make([][]float64, len(cells))
		markers := make([]string, len(cells))
		anyMissing := false
		for i, f := range cells {
			counts[i], markers[i] = f(e)
			if markers[i] != "" {
				anyMissing = true
			}
		}

		if len(e.Scheme.Ranges) == 0 {
			if anyMissing {
				t.Rows = append(t.Rows, Row{Object: e.Object, Model: e.Model, Variable: e.Variable, Cells: markers})
			}
			continue
		}
		for k, rg := range e.Scheme.Ranges {
			row := Row{Object: e.Object, Model: e.Model, Variable: e.Variable, Range: rg.Label,
				Cells: make([]string, len(cells))}
			for i := range cells {
				if markers[i] != "" {
					row.Cells[i] = markers[i]
					continue
				}
				row.Cells[i] = formatCount(counts[i][k])
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}
