package report

import (
	"fmt"
	"math"
)

// Range is one bucket of a binning scheme.
type Range struct {
	Label    string
	Lo, Hi   float64
	LoClosed bool
	HiClosed bool
}

// Contains reports whether x falls in the bucket. NaN is in no bucket.
func (r Range) Contains(x float64) bool {
	if math.IsNaN(x) {
		return false
	}
	if x < r.Lo || (x == r.Lo && !r.LoClosed) {
		return false
	}
	if x > r.Hi || (x == r.Hi && !r.HiClosed) {
		return false
	}
	return true
}

// Scheme is the fixed binning of one variable category.
type Scheme struct {
	Name   string
	Ranges []Range
}

var (
	PtMass = Scheme{Name: "ptmass", Ranges: []Range{
		{Label: "0-100", Lo: 0, Hi: 100, LoClosed: true, HiClosed: true},
		{Label: "101-1000", Lo: 100, Hi: 1000, HiClosed: true},
		{Label: ">1000", Lo: 1000, Hi: math.Inf(1)},
	}}
	DeltaR = Scheme{Name: "deltar", Ranges: []Range{
		{Label: "<0.4", Lo: math.Inf(-1), Hi: 0.4},
		{Label: "≥0.4", Lo: 0.4, Hi: math.Inf(1), LoClosed: true},
	}}
	Pileup = Scheme{Name: "pileup", Ranges: []Range{
		{Label: "0-40", Lo: 0, Hi: 40, LoClosed: true, HiClosed: true},
		{Label: "41-60", Lo: 40, Hi: 60, HiClosed: true},
		{Label: ">60", Lo: 60, Hi: math.Inf(1)},
	}}
	None = Scheme{Name: "none"}
)

// SchemeByName resolves a scheme name.
func SchemeByName(name string) (Scheme, error) {
	for _, s := range []Scheme{PtMass, DeltaR, Pileup, None} {
		if s.Name == name {
			return s, nil
		}
	}
	return Scheme{}, fmt.Errorf("report: unknown scheme %q", name)
}

// Scale is the factor turning raw counts into occurrences per million events.
// A zero total scales to zero.
func Scale(total int64) float64 {
	if total <= 0 {
		return 0
	}
	return 1e6 / float64(total)
}

// Occupancy counts the values in each range of s, times scale.
func Occupancy(values []float64, s Scheme, scale float64) []float64 {
	out := make([]float64, len(s.Ranges))
	for _, v := range values {
		for i, r := range s.Ranges {
			if r.Contains(v) {
				out[i]++
			}
		}
	}
	for i := range out {
		out[i] *= scale
	}
	return out
}
