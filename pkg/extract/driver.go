package extract

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pasenov/coverage/pkg/core"
	"github.com/pasenov/coverage/pkg/data"
	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/logging"
	"github.com/pasenov/coverage/pkg/metrics"
)

// Driver runs the stage sequence over every batch of every source and accumulates
// the emitted rows.
type Driver struct {
	Config *dataset.DatasetConfig
	Stages []Stage
	// Columns restricts what is read from each source; nil reads everything.
	Columns   []string
	BatchSize int
	Folder    string
	Debug     bool

	Open    func(path string) (data.Source, error)
	Log     *zap.Logger
	Metrics *metrics.Recorder
}

// Result is what a run accumulated.
type Result struct {
	Train   *core.Matrix
	Eff     *core.Matrix
	Sources int
	Batches int
	Events  int64
}

// Efficiency reports whether the run also emits the efficiency array.
func (d *Driver) Efficiency() bool { return d.Config.Type == "vector" }

func (d *Driver) sequence() []Stage {
	seq := append([]Stage{}, d.Stages...)
	seq = append(seq, TrainingDataset{Config: d.Config})
	if d.Efficiency() {
		seq = append(seq, EfficiencyDataset{Config: d.Config})
	}
	return seq
}

// Run processes the sources in order, batch by batch. After each source is
// exhausted its entry count is merged into the folder's ledger.
func (d *Driver) Run(ctx context.Context, paths []string) (*Result, error) {
	log := logging.OrNop(d.Log)
	open := d.Open
	if open == nil {
		open = data.Open
	}
	res := &Result{Train: core.Empty(d.Config.NumColumns())}
	if d.Efficiency() {
		res.Eff = core.Empty(len(d.Config.ConditioningFeatures) + 1)
	}
	seq := d.sequence()
	j := 0

	for _, path := range paths {
		src, err := open(path)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		n, err := d.runSource(ctx, src, seq, res, &j)
		src.Close()
		if err != nil {
			return nil, err
		}
		if err := dataset.RecordEventCount(d.Folder, src.Name(), src.Entries(), log); err != nil {
			return nil, fmt.Errorf("extract: record event count of %s: %w", path, err)
		}
		res.Sources++
		d.Metrics.Source()
		log.Info("source extracted",
			zap.String("source", src.Name()),
			zap.Int64("events", src.Entries()),
			zap.Int("batches", n),
			zap.Int("rows", res.Train.R),
			zap.Duration("took", time.Since(start)))
	}
	return res, nil
}

func (d *Driver) runSource(ctx context.Context, src data.Source, seq []Stage, res *Result, j *int) (int, error) {
	log := logging.OrNop(d.Log)
	plan := data.Plan(src.Entries(), d.BatchSize)
	for _, r := range plan {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		log.Debug("batch", zap.String("source", src.Name()), zap.Int("batch", r.Index),
			zap.Int64("start", r.Start), zap.Int64("end", r.End))

		t, err := src.ReadRange(r.Start, r.End, d.Columns)
		if err != nil {
			return 0, err
		}
		b, err := NewBatch(r, t)
		if err != nil {
			return 0, err
		}
		for _, st := range seq {
			log.Debug("stage", zap.String("stage", st.Name()))
			if b, err = st.Run(b); err != nil {
				return 0, fmt.Errorf("%s batch %d: %w", src.Name(), r.Index, err)
			}
		}

		if d.Config.OutTypes == nil {
			d.Config.OutTypes = make(map[string]dataset.DType, len(d.Config.TargetFeatures))
			for _, c := range d.Config.TargetFeatures {
				d.Config.OutTypes[c] = b.DType(c)
			}
		}
		if d.Debug {
			names := append(d.Config.Features(), d.Config.Matching.Columns()...)
			if err := dumpBatch(DebugFile(d.Folder, *j), b, names); err != nil {
				return 0, fmt.Errorf("extract: debug dump %d: %w", *j, err)
			}
		}
		*j++

		if err := res.Train.AppendRows(b.Training); err != nil {
			return 0, fmt.Errorf("extract: training rows of batch %d: %w", r.Index, err)
		}
		if res.Eff != nil {
			if err := res.Eff.AppendRows(b.Efficiency); err != nil {
				return 0, fmt.Errorf("extract: efficiency rows of batch %d: %w", r.Index, err)
			}
		}
		res.Batches++
		res.Events += int64(b.Events())
		d.Metrics.Batch(b.Events())
	}
	return len(plan), nil
}
