package extract

import (
	"math"

	"github.com/pasenov/coverage/pkg/dataset"
)

// EfficiencyTarget is the trailing column of the efficiency array.
const EfficiencyTarget = "is_matched"

// rowMask returns, per row, the position of the first true mask column, or -1.
// Without a mask every row counts as matched at position 0.
func rowMask(b *Batch, stage string, masks []string) ([]int, error) {
	first := make([]int, b.rows)
	if len(masks) == 0 {
		return first, nil
	}
	cols := make([][]float64, len(masks))
	for i, m := range masks {
		v, ok := b.cols[m]
		if !ok {
			return nil, missingColumn(stage, m)
		}
		cols[i] = v
	}
	for r := range first {
		first[r] = -1
		for k, col := range cols {
			if col[r] != 0 && !math.IsNaN(col[r]) {
				first[r] = k
				break
			}
		}
	}
	return first, nil
}

func lookup(b *Batch, stage string, names []string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i, n := range names {
		if n == dataset.Placeholder {
			continue
		}
		v, ok := b.cols[n]
		if !ok {
			return nil, missingColumn(stage, n)
		}
		out[i] = v
	}
	return out, nil
}

// TrainingDataset emits one row per matched object in ColumnMap order.
type TrainingDataset struct {
	Config *dataset.DatasetConfig
}

func (TrainingDataset) Name() string { return "training_dataset" }

func (t TrainingDataset) Run(b *Batch) (*Batch, error) {
	var masks []string
	if t.Config.Matching != nil {
		masks = t.Config.Matching.TargetMask.Names
	}
	first, err := rowMask(b, t.Name(), masks)
	if err != nil {
		return nil, err
	}
	features := t.Config.Features()
	cols, err := lookup(b, t.Name(), features)
	if err != nil {
		return nil, err
	}
	placeholder := t.Config.HasPlaceholder()

	for r, k := range first {
		if k < 0 {
			continue
		}
		for j, col := range cols {
			if j == 0 && placeholder {
				b.Training = append(b.Training, float64(k))
				continue
			}
			b.Training = append(b.Training, col[r])
		}
	}
	return b, nil
}

// EfficiencyDataset emits every row: the conditioning features followed by is_matched.
// The placeholder column holds -1 for unmatched rows.
type EfficiencyDataset struct {
	Config *dataset.DatasetConfig
}

func (EfficiencyDataset) Name() string { return "efficiency_dataset" }

// Columns is the column list of the efficiency array.
func (e EfficiencyDataset) Columns() []string {
	out := append([]string{}, e.Config.ConditioningFeatures...)
	return append(out, EfficiencyTarget)
}

func (e EfficiencyDataset) Run(b *Batch) (*Batch, error) {
	var masks []string
	if e.Config.Matching != nil {
		masks = e.Config.Matching.TargetMask.Names
	}
	first, err := rowMask(b, e.Name(), masks)
	if err != nil {
		return nil, err
	}
	cols, err := lookup(b, e.Name(), e.Config.ConditioningFeatures)
	if err != nil {
		return nil, err
	}
	placeholder := e.Config.HasPlaceholder()

	for r, k := range first {
		for j, col := range cols {
			if j == 0 && placeholder {
				b.Efficiency = append(b.Efficiency, float64(k))
				continue
			}
			b.Efficiency = append(b.Efficiency, col[r])
		}
		matched := 0.0
		if k >= 0 {
			matched = 1
		}
		b.Efficiency = append(b.Efficiency, matched)
	}
	return b, nil
}
