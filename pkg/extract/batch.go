package extract

import (
	"fmt"

	"github.com/pasenov/coverage/pkg/data"
	"github.com/pasenov/coverage/pkg/dataset"
)

// Batch is the state handed from stage to stage for one event range.
// Row-aligned columns have one value per row; rows are events until a collection is
// exploded, objects afterwards. Jagged columns always stay per event.
type Batch struct {
	Index      int
	Start, End int64

	rows     int
	event    []int
	exploded bool
	cols     map[string][]float64
	jagged   map[string][][]float64
	dtypes   map[string]dataset.DType

	// Training and Efficiency collect the rows emitted by the dataset modules, row-major.
	Training   []float64
	Efficiency []float64
}

// NewBatch starts a batch from a source table.
func NewBatch(r data.Range, t *data.Table) (*Batch, error) {
	n := t.Events()
	b := &Batch{
		Index:  r.Index,
		Start:  t.Start,
		End:    t.End,
		rows:   n,
		event:  make([]int, n),
		cols:   make(map[string][]float64, len(t.Scalars)),
		jagged: make(map[string][][]float64, len(t.Jagged)),
		dtypes: make(map[string]dataset.DType, len(t.DTypes)),
	}
	for i := range b.event {
		b.event[i] = i
	}
	for k, v := range t.Scalars {
		if len(v) != n {
			return nil, fmt.Errorf("extract: column %q has %d values for %d events", k, len(v), n)
		}
		b.cols[k] = v
	}
	for k, v := range t.Jagged {
		if len(v) != n {
			return nil, fmt.Errorf("extract: column %q has %d entries for %d events", k, len(v), n)
		}
		b.jagged[k] = v
	}
	for k, v := range t.DTypes {
		b.dtypes[k] = v
	}
	return b, nil
}

// Rows is the number of rows of the row-aligned columns.
func (b *Batch) Rows() int { return b.rows }

// Events is the number of events in the batch.
func (b *Batch) Events() int { return int(b.End - b.Start) }

func (b *Batch) Column(name string) ([]float64, bool) {
	v, ok := b.cols[name]
	return v, ok
}

func (b *Batch) Jagged(name string) ([][]float64, bool) {
	v, ok := b.jagged[name]
	return v, ok
}

// Set defines or replaces a row-aligned column.
func (b *Batch) Set(name string, v []float64, dt dataset.DType) error {
	if len(v) != b.rows {
		return fmt.Errorf("extract: column %q has %d values for %d rows", name, len(v), b.rows)
	}
	b.cols[name] = v
	b.dtypes[name] = dt
	return nil
}

// DType returns the recorded dtype of a column, float64 when unknown.
func (b *Batch) DType(name string) dataset.DType {
	if dt, ok := b.dtypes[name]; ok {
		return dt
	}
	return dataset.Float64
}
