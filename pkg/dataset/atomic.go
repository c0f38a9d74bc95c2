package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// writeFileAtomic writes to a scratch file next to path and renames it into place,
// so a reader sees either the old file or the new one, never a partial write.
func writeFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	scratch := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString()))
	f, err := os.OpenFile(scratch, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("dataset: create scratch for %s: %w", base, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(scratch)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = write(bw); err != nil {
		return fmt.Errorf("dataset: write %s: %w", base, err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("dataset: flush %s: %w", base, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("dataset: sync %s: %w", base, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("dataset: close %s: %w", base, err)
	}
	if err = os.Rename(scratch, path); err != nil {
		return fmt.Errorf("dataset: swap %s into place: %w", base, err)
	}
	return nil
}
