package prepare

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pasenov/coverage/pkg/data"
	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/diagnostics"
	"github.com/pasenov/coverage/pkg/extract"
	"github.com/pasenov/coverage/pkg/logging"
	"github.com/pasenov/coverage/pkg/metrics"
	"github.com/pasenov/coverage/pkg/pipeline"
	"github.com/pasenov/coverage/pkg/registry"
)

// Options configures one preparation run.
type Options struct {
	Folder string
	Type   *registry.DatasetType
	Inputs []string

	BatchSize int
	// SkipExtraction reuses the data.npy already in Folder and only refits the processors.
	SkipExtraction bool
	SkipPlots      bool
	// Debug dumps every batch to debug_data_<j>.csv.
	Debug bool

	Open func(path string) (data.Source, error)
	Log  *zap.Logger
}

// Result describes what a run produced.
type Result struct {
	Config      *dataset.DatasetConfig
	Rows        int
	EffRows     int
	Shuffled    bool
	Extraction  *extract.Result
	Diagnostics *diagnostics.Summary
}

// Run extracts the inputs into Folder, fits the processors on the persisted array,
// writes the config and checks the round trip.
func Run(ctx context.Context, opt Options) (*Result, error) {
	log := logging.OrNop(opt.Log)
	if opt.Type == nil {
		return nil, fmt.Errorf("prepare: no dataset type")
	}
	if len(opt.Inputs) == 0 {
		return nil, fmt.Errorf("prepare: no input files")
	}
	open := opt.Open
	if open == nil {
		open = data.Open
	}
	rec := metrics.New(opt.Type.Name)
	start := time.Now()

	cfg := opt.Type.NewConfig()
	cfg.RunID = uuid.NewString()
	cfg.CreatedAt = time.Now().UTC()
	res := &Result{Config: cfg}
	log = log.With(zap.String("dataset", cfg.Name), zap.String("run", cfg.RunID))

	if !opt.SkipExtraction {
		if err := dataset.PrepareFolder(opt.Folder); err != nil {
			return nil, fmt.Errorf("prepare: %w", err)
		}
		stages, err := opt.Type.BuildStages()
		if err != nil {
			return nil, err
		}
		d := &extract.Driver{
			Config:    cfg,
			Stages:    stages,
			Columns:   opt.Type.Inputs,
			BatchSize: opt.BatchSize,
			Folder:    opt.Folder,
			Debug:     opt.Debug,
			Open:      open,
			Log:       log,
			Metrics:   rec,
		}
		ex, err := d.Run(ctx, opt.Inputs)
		if err != nil {
			return nil, err
		}
		res.Extraction = ex
		rec.Since("extract", start)

		if res.Shuffled = dataset.Assemble(ex.Train, ex.Eff, len(opt.Inputs)); res.Shuffled {
			log.Debug("shuffled data")
		}
		if ex.Train.R == 0 {
			log.Warn("no rows passed the target masks", zap.Int64("events", ex.Events))
		}
		if err := dataset.Persist(opt.Folder, ex.Train, ex.Eff); err != nil {
			return nil, err
		}
		if ex.Eff != nil {
			res.EffRows = ex.Eff.R
			rec.Rows("data_eff", ex.Eff.R)
		}
	} else {
		if err := outTypes(cfg, opt.Inputs[0], open); err != nil {
			return nil, err
		}
	}

	arr, err := dataset.ReadArray(filepath.Join(opt.Folder, dataset.DataFile))
	if err != nil {
		return nil, err
	}
	if arr.C != cfg.NumColumns() {
		return nil, fmt.Errorf("%w: %s has %d columns, %s lists %d",
			dataset.ErrColumnCount, dataset.DataFile, arr.C, cfg.Name, cfg.NumColumns())
	}
	res.Rows = arr.R
	rec.Rows("data", arr.R)

	fitStart := time.Now()
	p, err := pipeline.Fit(cfg, opt.Type.Processors, arr)
	if err != nil {
		return nil, fmt.Errorf("prepare: fit processors: %w", err)
	}
	if err := dataset.SaveConfig(opt.Folder, cfg); err != nil {
		return nil, err
	}
	rec.Since("fit", fitStart)
	log.Info("dataset prepared", zap.Int("rows", res.Rows), zap.Int("eff_rows", res.EffRows),
		zap.Int("columns", arr.C), zap.Bool("shuffled", res.Shuffled))

	diagStart := time.Now()
	sum, err := diagnostics.Run(cfg, p.Processors(), arr, diagnostics.Options{
		Folder:  opt.Folder,
		Plots:   !opt.SkipPlots,
		Log:     log,
		Metrics: rec,
	})
	if err != nil {
		return nil, err
	}
	res.Diagnostics = sum
	rec.Since("diagnostics", diagStart)
	rec.Since("total", start)

	if err := rec.WriteTextfile(filepath.Join(opt.Folder, dataset.MetricsFile)); err != nil {
		log.Warn("could not write metrics", zap.Error(err))
	}
	return res, nil
}

// outTypes records the target dtypes from the first event of an input, for runs
// that skip extraction. Targets the source lacks are recorded as float64.
func outTypes(cfg *dataset.DatasetConfig, path string, open func(string) (data.Source, error)) error {
	src, err := open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	t, err := src.ReadRange(0, 1, nil)
	if err != nil {
		return err
	}
	cfg.OutTypes = make(map[string]dataset.DType, len(cfg.TargetFeatures))
	for _, c := range cfg.TargetFeatures {
		dt, ok := t.DTypes[c]
		if !ok {
			dt = dataset.Float64
		}
		cfg.OutTypes[c] = dt
	}
	return nil
}
