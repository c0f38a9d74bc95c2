package data

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pasenov/coverage/pkg/dataset"
)

// DefaultBatchSize is the number of events read per batch.
const DefaultBatchSize = 100000

// ErrNoColumn is returned when a requested column does not exist in a source.
var ErrNoColumn = errors.New("data: no such column")

// Source yields named numeric columns for ranges of events.
type Source interface {
	// Name is the path or label the source was opened from.
	Name() string
	Entries() int64
	Columns() []string
	// ReadRange returns events [start, end). An end past Entries is clipped, never an error.
	// A nil columns list reads every column.
	ReadRange(start, end int64, columns []string) (*Table, error)
	Close() error
}

// Table holds the columns of one event range. Scalar columns have one value per event,
// jagged columns hold a variable-length list per event.
type Table struct {
	Start, End int64
	Scalars    map[string][]float64
	Jagged     map[string][][]float64
	DTypes     map[string]dataset.DType
}

// NewTable returns an empty table for events [start, end).
func NewTable(start, end int64) *Table {
	return &Table{
		Start:   start,
		End:     end,
		Scalars: map[string][]float64{},
		Jagged:  map[string][][]float64{},
		DTypes:  map[string]dataset.DType{},
	}
}

// Events is the number of events in the table.
func (t *Table) Events() int { return int(t.End - t.Start) }

// Has reports whether the table carries a column of either shape.
func (t *Table) Has(name string) bool {
	if _, ok := t.Scalars[name]; ok {
		return true
	}
	_, ok := t.Jagged[name]
	return ok
}

// Names lists the table's columns, sorted.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.Scalars)+len(t.Jagged))
	for k := range t.Scalars {
		out = append(out, k)
	}
	for k := range t.Jagged {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Range is one batch of a source.
type Range struct {
	Index      int
	Start, End int64
}

// Plan splits total events into ceil(total/batchSize) batches. The last batch's End
// may exceed total; sources clip it.
func Plan(total int64, batchSize int) []Range {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	b := int64(batchSize)
	n := (total + b - 1) / b
	out := make([]Range, n)
	for i := range out {
		out[i] = Range{Index: i, Start: int64(i) * b, End: int64(i+1) * b}
	}
	return out
}

// Clip bounds [start, end) to [0, total).
func Clip(start, end, total int64) (int64, int64) {
	end = min(end, total)
	start = min(max(start, 0), end)
	return start, end
}

func missing(src, name string) error {
	return fmt.Errorf("%w: %q in %s", ErrNoColumn, name, src)
}
