package dataset

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

// Ledger maps a source file basename to its total event count.
// Two sources with the same basename share one entry.
type Ledger map[string]int64

var ledgerEntry = regexp.MustCompile(`"([^"\\]+)"\s*:\s*(\d+)`)

// LoadLedger reads event_counts.json. A missing file is an empty ledger.
// Malformed content is salvaged by scanning for `"name": count` pairs; if nothing
// can be recovered the ledger is empty. Neither case is an error.
func LoadLedger(path string, log *zap.Logger) Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Ledger{}
	}
	if err != nil {
		log.Warn("event count ledger unreadable, counts unknown", zap.String("path", path), zap.Error(err))
		return Ledger{}
	}

	var l Ledger
	if err := json.Unmarshal(b, &l); err == nil && l != nil {
		return l
	}

	l = salvageLedger(b)
	log.Warn("event count ledger malformed, salvaged entries by pattern",
		zap.String("path", path), zap.Int("entries", len(l)))
	return l
}

func salvageLedger(b []byte) Ledger {
	l := Ledger{}
	for _, m := range ledgerEntry.FindAllSubmatch(b, -1) {
		n, err := strconv.ParseInt(string(m[2]), 10, 64)
		if err != nil {
			continue
		}
		l[string(m[1])] = n
	}
	return l
}

// Merge records count under the basename of source, overwriting any previous value.
func (l Ledger) Merge(source string, count int64) {
	l[filepath.Base(source)] = count
}

// Total sums every recorded count.
func (l Ledger) Total() int64 {
	var t int64
	for _, n := range l {
		t += n
	}
	return t
}

// Save writes the ledger as indented JSON, atomically.
func (l Ledger) Save(path string) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	})
}

// RecordEventCount loads the folder's ledger, merges one source and stores it back,
// keeping counts written by earlier invocations.
func RecordEventCount(folder, source string, count int64, log *zap.Logger) error {
	path := filepath.Join(folder, LedgerFile)
	l := LoadLedger(path, log)
	l.Merge(source, count)
	return l.Save(path)
}
