package diagnostics

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/pasenov/coverage/pkg/core"
	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/logging"
	"github.com/pasenov/coverage/pkg/metrics"
	"github.com/pasenov/coverage/pkg/pipeline"
)

// MinRows is the row count a dataset must exceed to be checked.
const MinRows = 10

// maxExamples bounds the offending rows quoted per feature.
const maxExamples = 5

// Options configures a diagnostics run.
type Options struct {
	// Folder receives transformed_figures/; empty or Plots=false disables plotting.
	Folder  string
	Plots   bool
	Bins    int
	Log     *zap.Logger
	Metrics *metrics.Recorder
}

// Summary reports what the check found.
type Summary struct {
	Rows      int
	NonFinite map[string]int
	Plotted   bool
}

// Arrays holds the three views of the persisted rows, in ColumnMap order.
type Arrays struct {
	Original    *core.Matrix
	Transformed *core.Matrix
	// RoundTrip is [target_phys..., cond_phys...] as returned by ValidationNN2Phy.
	RoundTrip *core.Matrix
}

// RoundTrip maps orig to network space and the targets back again.
func RoundTrip(cfg *dataset.DatasetConfig, proc pipeline.Processors, orig *core.Matrix) (*Arrays, error) {
	nCond := len(cfg.ConditioningFeatures)
	transformed, err := proc.TrainPhy2NN(orig)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: forward: %w", err)
	}
	targets, err := transformed.SliceCols(nCond, transformed.C)
	if err != nil {
		return nil, err
	}
	cond, err := orig.SliceCols(0, nCond)
	if err != nil {
		return nil, err
	}
	in, err := core.HStack(targets, cond)
	if err != nil {
		return nil, err
	}
	phys, err := proc.ValidationNN2Phy(in)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: inverse: %w", err)
	}
	return &Arrays{Original: orig, Transformed: transformed, RoundTrip: phys}, nil
}

// roundTripCol is the column of feature j (ColumnMap order) in the round-trip layout.
func roundTripCol(j, nCond, nTarget int) int {
	if j < nCond {
		return nTarget + j
	}
	return j - nCond
}

// Scan counts, per feature, the rows whose round-tripped value is NaN or Inf and
// logs them with their original and transformed values. Every feature is scanned
// before anything is modified.
func Scan(cfg *dataset.DatasetConfig, a *Arrays, log *zap.Logger) map[string]int {
	log = logging.OrNop(log)
	nCond, nTarget := len(cfg.ConditioningFeatures), len(cfg.TargetFeatures)
	out := map[string]int{}
	for j, name := range cfg.Features() {
		k := roundTripCol(j, nCond, nTarget)
		var rows []int
		for i := 0; i < a.RoundTrip.R; i++ {
			v := a.RoundTrip.At(i, k)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			continue
		}
		out[name] = len(rows)
		ex := rows[:min(len(rows), maxExamples)]
		orig := make([]float64, len(ex))
		tr := make([]float64, len(ex))
		for n, i := range ex {
			orig[n] = a.Original.At(i, j)
			tr[n] = a.Transformed.At(i, j)
		}
		log.Warn("nan or inf after round trip, removing them from the plots",
			zap.String("feature", displayName(name)),
			zap.Int("rows", len(rows)),
			zap.Ints("first_rows", ex),
			zap.Float64s("original", orig),
			zap.Float64s("transformed", tr))
	}
	return out
}

// Run checks the round trip of every persisted row and, when asked, renders the
// distribution plots. Datasets with MinRows rows or fewer are skipped.
func Run(cfg *dataset.DatasetConfig, proc pipeline.Processors, orig *core.Matrix, opt Options) (*Summary, error) {
	log := logging.OrNop(opt.Log)
	sum := &Summary{Rows: orig.R, NonFinite: map[string]int{}}
	if orig.R <= MinRows {
		log.Info("not enough data to make plots", zap.Int("rows", orig.R))
		return sum, nil
	}

	a, err := RoundTrip(cfg, proc, orig.Clone())
	if err != nil {
		return nil, err
	}
	sum.NonFinite = Scan(cfg, a, log)
	for name, n := range sum.NonFinite {
		opt.Metrics.NonFinite(displayName(name), n)
	}
	if !opt.Plots || opt.Folder == "" {
		return sum, nil
	}

	a.Original.ZeroNonFinite()
	a.Transformed.ZeroNonFinite()
	a.RoundTrip.ZeroNonFinite()

	log.Debug("making plots", zap.Int("features", cfg.NumColumns()))
	if err := Plot(cfg, a, opt.Folder, opt.Bins); err != nil {
		return nil, err
	}
	sum.Plotted = true
	return sum, nil
}

func displayName(name string) string {
	if name == dataset.Placeholder {
		return "placeholder"
	}
	return name
}
