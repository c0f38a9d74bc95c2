package stats

// ClipBounds returns the lower and upper percentiles of the finite values of x.
func ClipBounds(x []float64, lower, upper float64) (float64, float64) {
	f := Finite(x)
	return Percentile(f, lower), Percentile(f, upper)
}

// Clamp limits v to [lo, hi]. NaN passes through.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
