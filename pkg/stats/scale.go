package stats

// StandardScaler maps a column to zero mean and unit variance.
type StandardScaler struct {
	Mean float64
	Std  float64
}

// Fit computes mean and std over the finite values of x. A zero std becomes 1.
func (s *StandardScaler) Fit(x []float64) {
	s.Mean, s.Std = MeanStd(Finite(x))
	if s.Std == 0 {
		s.Std = 1
	}
}

func (s *StandardScaler) Transform(v float64) float64 { return (v - s.Mean) / s.Std }

func (s *StandardScaler) Inverse(v float64) float64 { return v*s.Std + s.Mean }

// MinMaxScaler maps a column onto [0, 1].
type MinMaxScaler struct {
	Min float64
	Max float64
}

// Fit records the finite range of x. A degenerate range is widened to unit width.
func (s *MinMaxScaler) Fit(x []float64) {
	s.Min, s.Max = MinMax(Finite(x))
	if s.Max == s.Min {
		s.Max = s.Min + 1
	}
}

func (s *MinMaxScaler) Transform(v float64) float64 { return (v - s.Min) / (s.Max - s.Min) }

func (s *MinMaxScaler) Inverse(v float64) float64 { return v*(s.Max-s.Min) + s.Min }
