package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/pasenov/coverage/pkg/core"
)

// WriteArray stores m as a 2-D little-endian float64 .npy file, atomically.
// An array without rows is written with shape (0, C).
func WriteArray(path string, m *core.Matrix) error {
	if m.C == 0 {
		return ErrEmptyArray
	}
	if m.R == 0 {
		return writeFileAtomic(path, func(w io.Writer) error {
			return writeEmptyHeader(w, m.C)
		})
	}
	dense := mat.NewDense(m.R, m.C, m.Data)
	return writeFileAtomic(path, func(w io.Writer) error {
		return npyio.Write(w, dense)
	})
}

// ReadArray loads a 2-D C-ordered float .npy file.
func ReadArray(path string) (*core.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: read header of %s: %w", path, err)
	}
	descr := r.Header.Descr
	if len(descr.Shape) != 2 || descr.Fortran {
		return nil, fmt.Errorf("%w: %s has shape %v (fortran=%v)", ErrArrayLayout, path, descr.Shape, descr.Fortran)
	}
	rows, cols := descr.Shape[0], descr.Shape[1]
	if rows == 0 || cols == 0 {
		return core.Empty(cols), nil
	}

	var dense mat.Dense
	if err := r.Read(&dense); err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	m := core.NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		copy(m.Row(i), dense.RawRowView(i))
	}
	return m, nil
}

// writeEmptyHeader emits a version 1.0 header for a (0, cols) float64 array.
// mat.Dense cannot hold zero rows, so npyio.Write cannot produce it.
func writeEmptyHeader(w io.Writer, cols int) error {
	var dict bytes.Buffer
	fmt.Fprintf(&dict, "{'descr': '<f8', 'fortran_order': False, 'shape': (0, %d), }", cols)
	// magic, version and length prefix take 10 bytes; the header ends on a 64-byte boundary
	pad := 63 - (10+dict.Len())%64
	dict.Write(bytes.Repeat([]byte{' '}, pad))
	dict.WriteByte('\n')

	if _, err := w.Write(npyio.Magic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(dict.Len())); err != nil {
		return err
	}
	_, err := w.Write(dict.Bytes())
	return err
}
