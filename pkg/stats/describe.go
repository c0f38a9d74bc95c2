package stats

// Summary describes one column. Missing counts NaN and ±Inf; the moments are
// taken over the finite values only.
type Summary struct {
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Median  float64
	Max     float64
}

// MissingRatio is the fraction of non-finite values.
func (s Summary) MissingRatio() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Missing) / float64(s.Count)
}

// Describe summarizes x.
func Describe(x []float64) Summary {
	f := Finite(x)
	s := Summary{Count: len(x), Missing: len(x) - len(f)}
	s.Mean, s.Std = MeanStd(f)
	s.Min, s.Max = MinMax(f)
	s.Median = Percentile(f, 50)
	return s
}
