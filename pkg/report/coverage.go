package report

import (
	"context"

	"go.uber.org/zap"

	"github.com/pasenov/coverage/pkg/data"
	"github.com/pasenov/coverage/pkg/logging"
)

// Coverage tabulates the catalog straight from an event source. Jagged columns count
// every element; counts are scaled to the source's entry count.
func Coverage(ctx context.Context, src data.Source, models []string, batchSize int, log *zap.Logger) (*Table, error) {
	log = logging.OrNop(log)
	entries := Catalog(models...)

	available := map[string]bool{}
	for _, c := range src.Columns() {
		available[c] = true
	}
	schemes := map[string]Scheme{}
	var columns []string
	for _, e := range entries {
		if _, seen := schemes[e.Variable]; seen || !available[e.Variable] {
			continue
		}
		schemes[e.Variable] = e.Scheme
		columns = append(columns, e.Variable)
	}

	raw := make(map[string][]float64, len(columns))
	for _, c := range columns {
		raw[c] = make([]float64, len(schemes[c].Ranges))
	}
	if len(columns) > 0 {
		for _, r := range data.Plan(src.Entries(), batchSize) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t, err := src.ReadRange(r.Start, r.End, columns)
			if err != nil {
				return nil, err
			}
			for _, c := range columns {
				vals, ok := t.Scalars[c]
				if !ok {
					for _, list := range t.Jagged[c] {
						vals = append(vals, list...)
					}
				}
				for k, n := range Occupancy(vals, schemes[c], 1) {
					raw[c][k] += n
				}
			}
			log.Debug("coverage batch", zap.Int("batch", r.Index), zap.Int("events", t.Events()))
		}
	}

	scale := Scale(src.Entries())
	cells := []countFunc{func(e Entry) ([]float64, string) {
		counts, ok := raw[e.Variable]
		if !ok {
			return nil, NotInDataset
		}
		out := make([]float64, len(counts))
		for k, n := range counts {
			out[k] = n * scale
		}
		return out, ""
	}}
	return buildTable(entries, []string{src.Name()}, cells), nil
}
