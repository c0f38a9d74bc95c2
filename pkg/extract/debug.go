package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// DebugFile names the per-batch debug dump.
func DebugFile(folder string, j int) string {
	return filepath.Join(folder, fmt.Sprintf("debug_data_%d.csv", j))
}

// dumpBatch writes the named row-aligned columns of b that exist, in sorted order.
func dumpBatch(path string, b *Batch, names []string) error {
	seen := map[string]bool{}
	var cols []string
	for _, n := range names {
		if _, ok := b.cols[n]; ok && !seen[n] {
			seen[n] = true
			cols = append(cols, n)
		}
	}
	sort.Strings(cols)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		f.Close()
		return err
	}
	rec := make([]string, len(cols))
	for r := 0; r < b.rows; r++ {
		for i, c := range cols {
			rec[i] = strconv.FormatFloat(b.cols[c][r], 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
