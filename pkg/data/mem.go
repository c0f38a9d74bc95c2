package data

import (
	"fmt"
	"sort"
)

// MemSource serves a Table that is already in memory.
type MemSource struct {
	name    string
	entries int64
	table   *Table
}

// NewMemSource wraps t. Every column must have one entry per event.
func NewMemSource(name string, t *Table) (*MemSource, error) {
	n := int64(-1)
	check := func(col string, l int) error {
		if n < 0 {
			n = int64(l)
			return nil
		}
		if int64(l) != n {
			return fmt.Errorf("data: column %q has %d events, want %d", col, l, n)
		}
		return nil
	}
	for k, v := range t.Scalars {
		if err := check(k, len(v)); err != nil {
			return nil, err
		}
	}
	for k, v := range t.Jagged {
		if err := check(k, len(v)); err != nil {
			return nil, err
		}
	}
	if n < 0 {
		n = 0
	}
	return &MemSource{name: name, entries: n, table: t}, nil
}

func (m *MemSource) Name() string   { return m.name }
func (m *MemSource) Entries() int64 { return m.entries }
func (m *MemSource) Close() error   { return nil }

func (m *MemSource) Columns() []string {
	names := m.table.Names()
	sort.Strings(names)
	return names
}

func (m *MemSource) ReadRange(start, end int64, columns []string) (*Table, error) {
	start, end = Clip(start, end, m.entries)
	if columns == nil {
		columns = m.Columns()
	}
	out := NewTable(start, end)
	for _, c := range columns {
		if v, ok := m.table.Scalars[c]; ok {
			out.Scalars[c] = append([]float64{}, v[start:end]...)
		} else if v, ok := m.table.Jagged[c]; ok {
			rows := make([][]float64, 0, end-start)
			for _, r := range v[start:end] {
				rows = append(rows, append([]float64{}, r...))
			}
			out.Jagged[c] = rows
		} else {
			return nil, missing(m.name, c)
		}
		if dt, ok := m.table.DTypes[c]; ok {
			out.DTypes[c] = dt
		}
	}
	return out, nil
}
