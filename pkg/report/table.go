package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Markers written instead of a number.
const (
	NotInDataset = "Not found in the dataset"
	NotInFolder  = "Not found in the provided folder"
)

// Row is one variable × range line of the report.
type Row struct {
	Object   string
	Model    string
	Variable string
	Range    string
	Cells    []string
}

// Table is a finished report, one cell column per input.
type Table struct {
	Inputs []string
	Rows   []Row
}

// Header returns the column names of the spreadsheet forms.
func (t *Table) Header() []string {
	h := []string{"Object", "Source/Model", "ConditioningVariable(Range-label)", "Range"}
	return append(h, t.Inputs...)
}

func formatCount(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// Format names the report encodings.
type Format string

const (
	TSV  Format = "tsv"
	CSV  Format = "csv"
	Text Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case TSV, CSV, Text:
		return f, nil
	}
	return "", fmt.Errorf("report: unknown format %q", s)
}

// Write encodes the table in format f.
func (t *Table) Write(w io.Writer, f Format) error {
	switch f {
	case TSV:
		return t.writeDelimited(w, '\t')
	case CSV:
		return t.writeDelimited(w, ',')
	case Text:
		return t.writeText(w)
	}
	return fmt.Errorf("report: unknown format %q", f)
}

func (t *Table) writeDelimited(w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := append([]string{r.Object, r.Model, r.Variable, r.Range}, r.Cells...)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeText prints one block per variable followed by the bare cell column, ready to
// paste into a spreadsheet.
func (t *Table) writeText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "\nVariables and ranges:\n\n")
	fmt.Fprint(bw, "====================================\n\n")

	var sheet []string
	for i := 0; i < len(t.Rows); {
		r := t.Rows[i]
		fmt.Fprintf(bw, "=== %s ===\n", r.Variable)
		for ; i < len(t.Rows) && t.Rows[i].Variable == r.Variable && t.Rows[i].Model == r.Model; i++ {
			cells := strings.Join(t.Rows[i].Cells, "\t")
			if t.Rows[i].Range == "" {
				fmt.Fprintf(bw, " %s\n", cells)
			} else {
				fmt.Fprintf(bw, " %-12s: %s\n", t.Rows[i].Range, cells)
			}
			sheet = append(sheet, cells)
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprint(bw, "\nResults (to be pasted on the spreadsheet):\n\n")
	for _, s := range sheet {
		fmt.Fprintln(bw, s)
	}
	return bw.Flush()
}
