package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLedgerMissingIsEmpty(t *testing.T) {
	l := LoadLedger(filepath.Join(t.TempDir(), LedgerFile), nil)
	require.Empty(t, l)
	require.Zero(t, l.Total())
}

// Runs on different sources accumulate; a rerun on the same basename overwrites.
func TestRecordEventCountMerges(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop()
	require.NoError(t, RecordEventCount(dir, "/store/a/A.root", 100, log))
	require.NoError(t, RecordEventCount(dir, "/store/b/B.root", 50, log))
	require.NoError(t, RecordEventCount(dir, "/other/A.root", 70, log))

	l := LoadLedger(filepath.Join(dir, LedgerFile), log)
	require.Equal(t, Ledger{"A.root": 70, "B.root": 50}, l)
	require.Equal(t, int64(120), l.Total())
}

func TestLedgerSalvage(t *testing.T) {
	path := filepath.Join(t.TempDir(), LedgerFile)
	require.NoError(t, os.WriteFile(path, []byte("{\n  \"A.root\": 10,\n  \"B.root\": 2"), 0o644))
	require.Equal(t, Ledger{"A.root": 10, "B.root": 2}, LoadLedger(path, nil))

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	require.Empty(t, LoadLedger(path, nil))
}
