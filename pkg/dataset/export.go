package dataset

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pasenov/coverage/pkg/core"
)

// Header returns the column names of the persisted array, with the placeholder
// column spelled out.
func (c *DatasetConfig) Header() []string {
	out := c.Features()
	if c.HasPlaceholder() {
		out[0] = "placeholder"
	}
	return out
}

// WriteCSV writes m under the config's header, six decimals per value.
// limit bounds the rows written; zero or less writes them all.
func WriteCSV(w io.Writer, cfg *DatasetConfig, m *core.Matrix, limit int) error {
	if m.C != cfg.NumColumns() {
		return ErrColumnCount
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cfg.Header()); err != nil {
		return err
	}
	n := m.R
	if limit > 0 {
		n = min(n, limit)
	}
	rec := make([]string, m.C)
	for i := 0; i < n; i++ {
		for j, v := range m.Row(i) {
			rec[j] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
