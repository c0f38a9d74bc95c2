package stats

import (
	"gonum.org/v1/gonum/floats"
)

// BinEdges returns nBins+1 equally spaced edges spanning the finite range of x.
// A constant (or empty) input gets a unit-wide range centred on the value.
func BinEdges(x []float64, nBins int) []float64 {
	lo, hi := MinMax(Finite(x))
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return floats.Span(make([]float64, nBins+1), lo, hi)
}
