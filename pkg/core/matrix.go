package core

import (
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

var (
	ErrDimensionMismatch = errors.New("core: dimension mismatch")
	ErrOutOfRange        = errors.New("core: index out of range")
)

// Matrix is a dense row-major table of float64 values.
// Rows are events (or objects), columns are features.
type Matrix struct {
	R, C int
	Data []float64
}

// NewMatrix allocates a zero matrix.
func NewMatrix(r, c int) *Matrix {
	return &Matrix{R: r, C: c, Data: make([]float64, r*c)}
}

// Empty returns a matrix with no rows and c columns, ready to grow with AppendRows.
func Empty(c int) *Matrix {
	return &Matrix{R: 0, C: c}
}

// FromSlice creates a Matrix from a nested slice (copies data).
func FromSlice(a [][]float64) *Matrix {
	r := len(a)
	if r == 0 {
		return &Matrix{R: 0, C: 0}
	}

	c := len(a[0])
	m := NewMatrix(r, c)
	k := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Data[k] = a[i][j]
			k++
		}
	}
	return m
}

// FromColumns builds a matrix whose j-th column is cols[j]. All columns must have equal length.
func FromColumns(cols [][]float64) (*Matrix, error) {
	if len(cols) == 0 {
		return &Matrix{}, nil
	}
	r := len(cols[0])
	m := NewMatrix(r, len(cols))
	for j, col := range cols {
		if len(col) != r {
			return nil, ErrDimensionMismatch
		}
		for i, v := range col {
			m.Data[i*m.C+j] = v
		}
	}
	return m, nil
}

// At returns element (i, j)
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.C+j] }

// Set sets element (i, j)
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.C+j] = v }

// Clone Deep Copies of Matrix
func (m *Matrix) Clone() *Matrix {
	n := &Matrix{R: m.R, C: m.C, Data: make([]float64, len(m.Data))}
	copy(n.Data, m.Data)
	return n
}

// Row returns row i as a slice sharing the matrix storage.
func (m *Matrix) Row(i int) []float64 { return m.Data[i*m.C : (i+1)*m.C] }

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []float64 {
	v := make([]float64, m.R)
	for i := 0; i < m.R; i++ {
		v[i] = m.Data[i*m.C+j]
	}
	return v
}

// SetCol overwrites column j with v.
func (m *Matrix) SetCol(j int, v []float64) error {
	if j < 0 || j >= m.C {
		return ErrOutOfRange
	}
	if len(v) != m.R {
		return ErrDimensionMismatch
	}
	for i := 0; i < m.R; i++ {
		m.Data[i*m.C+j] = v[i]
	}
	return nil
}

// AppendRows appends rows given in row-major order. len(rows) must be a multiple of C.
func (m *Matrix) AppendRows(rows []float64) error {
	if m.C == 0 {
		if len(rows) != 0 {
			return ErrDimensionMismatch
		}
		return nil
	}
	if len(rows)%m.C != 0 {
		return ErrDimensionMismatch
	}
	m.Data = append(m.Data, rows...)
	m.R += len(rows) / m.C
	return nil
}

// SliceCols returns a copy of columns [lo, hi).
func (m *Matrix) SliceCols(lo, hi int) (*Matrix, error) {
	if lo < 0 || hi > m.C || lo > hi {
		return nil, ErrOutOfRange
	}
	out := NewMatrix(m.R, hi-lo)
	for i := 0; i < m.R; i++ {
		copy(out.Data[i*out.C:(i+1)*out.C], m.Data[i*m.C+lo:i*m.C+hi])
	}
	return out, nil
}

// HStack concatenates A and B column-wise: [A | B].
func HStack(A, B *Matrix) (*Matrix, error) {
	if A.R != B.R {
		return nil, ErrDimensionMismatch
	}
	C := NewMatrix(A.R, A.C+B.C)
	for i := 0; i < A.R; i++ {
		row := C.Data[i*C.C : (i+1)*C.C]
		copy(row[:A.C], A.Data[i*A.C:(i+1)*A.C])
		copy(row[A.C:], B.Data[i*B.C:(i+1)*B.C])
	}
	return C, nil
}

// Shuffle permutes the row order in place with an unseeded uniform permutation.
func (m *Matrix) Shuffle() {
	if m.R < 2 {
		return
	}
	indices := rand.Perm(m.R)
	out := make([]float64, len(m.Data))
	for i, idx := range indices {
		copy(out[i*m.C:(i+1)*m.C], m.Data[idx*m.C:(idx+1)*m.C])
	}
	m.Data = out
}

// ApplyCols runs f on every column in parallel and writes the result back.
// f receives the column index and a private copy of the column.
func (m *Matrix) ApplyCols(f func(j int, col []float64) error) error {
	workers := min(runtime.GOMAXPROCS(0), m.C)
	if workers == 0 {
		return nil
	}
	jobs := make(chan int)
	errs := make([]error, m.C)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				col := m.Col(j)
				if err := f(j, col); err != nil {
					errs[j] = err
					continue
				}
				for i := 0; i < m.R; i++ {
					m.Data[i*m.C+j] = col[i]
				}
			}
		}()
	}
	for j := 0; j < m.C; j++ {
		jobs <- j
	}
	close(jobs)
	wg.Wait()
	return errors.Join(errs...)
}

// ZeroNonFinite replaces NaN and ±Inf with 0 (in-place) and returns how many were replaced.
func (m *Matrix) ZeroNonFinite() int {
	n := 0
	for i, v := range m.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			m.Data[i] = 0
			n++
		}
	}
	return n
}
