package data

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pasenov/coverage/pkg/dataset"
)

// JaggedSuffix marks a CSV header whose cells hold ';'-separated per-event lists.
const JaggedSuffix = "[]"

// CSVSource serves events from a headered CSV file, one event per record.
type CSVSource struct {
	*MemSource
}

// OpenCSV reads the whole file. Columns named "x[]" become jagged column "x";
// an empty cell in a jagged column is an event with no objects.
func OpenCSV(path string) (*CSVSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t, err := readCSV(bufio.NewReader(file), path)
	if err != nil {
		return nil, err
	}
	mem, err := NewMemSource(path, t)
	if err != nil {
		return nil, err
	}
	return &CSVSource{MemSource: mem}, nil
}

func readCSV(r io.Reader, path string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("data: read header of %s: %w", path, err)
	}
	names := make([]string, len(header))
	jagged := make([]bool, len(header))
	t := NewTable(0, 0)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if strings.HasSuffix(h, JaggedSuffix) {
			h = strings.TrimSuffix(h, JaggedSuffix)
			jagged[i] = true
			t.Jagged[h] = [][]float64{}
		} else {
			t.Scalars[h] = []float64{}
		}
		names[i] = h
		t.DTypes[h] = dataset.Float64
	}

	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("data: %s line %d: %w", path, line, err)
		}
		for i, s := range rec {
			if jagged[i] {
				vals, err := parseList(s)
				if err != nil {
					return nil, fmt.Errorf("data: %s line %d column %q: %w", path, line, names[i], err)
				}
				t.Jagged[names[i]] = append(t.Jagged[names[i]], vals)
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("data: %s line %d column %q: %w", path, line, names[i], err)
			}
			t.Scalars[names[i]] = append(t.Scalars[names[i]], v)
		}
	}
	t.End = int64(line - 1)
	return t, nil
}

func parseList(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []float64{}, nil
	}
	parts := strings.Split(s, ";")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
