package pipeline

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/stats"
)

func init() {
	Register("identity", func(dataset.ProcessorSpec) (Transform, error) { return identity{}, nil })
	Register("affine", newAffine)
	Register("log", newLog)
	Register("log1p", func(dataset.ProcessorSpec) (Transform, error) { return log1p{}, nil })
	Register("standard", newStandard)
	Register("minmax", newMinMax)
	Register("clip", newClip)
	Register("logit", newLogit)
	Register("dequantize", newDequantize)
}

type identity struct{}

func (identity) Forward(x float64) float64   { return x }
func (identity) Inverse(y float64) float64   { return y }
func (identity) Spec() dataset.ProcessorSpec { return dataset.ProcessorSpec{Kind: "identity"} }

// affine: y = x*scale + shift
type affine struct{ scale, shift float64 }

func newAffine(s dataset.ProcessorSpec) (Transform, error) {
	a := affine{scale: s.Param("scale", 1), shift: s.Param("shift", 0)}
	if a.scale == 0 {
		return nil, fmt.Errorf("pipeline: affine scale must be non-zero")
	}
	return a, nil
}

func (a affine) Forward(x float64) float64 { return x*a.scale + a.shift }
func (a affine) Inverse(y float64) float64 { return (y - a.shift) / a.scale }
func (a affine) Spec() dataset.ProcessorSpec {
	return dataset.ProcessorSpec{Kind: "affine", Params: map[string]float64{"scale": a.scale, "shift": a.shift}}
}

// log: y = ln(x + offset)
type logT struct{ offset float64 }

func newLog(s dataset.ProcessorSpec) (Transform, error) {
	return logT{offset: s.Param("offset", 0)}, nil
}

func (l logT) Forward(x float64) float64 { return math.Log(x + l.offset) }
func (l logT) Inverse(y float64) float64 { return math.Exp(y) - l.offset }
func (l logT) Spec() dataset.ProcessorSpec {
	return dataset.ProcessorSpec{Kind: "log", Params: map[string]float64{"offset": l.offset}}
}

type log1p struct{}

func (log1p) Forward(x float64) float64   { return math.Log1p(x) }
func (log1p) Inverse(y float64) float64   { return math.Expm1(y) }
func (log1p) Spec() dataset.ProcessorSpec { return dataset.ProcessorSpec{Kind: "log1p"} }

// standard: zero mean, unit variance, fitted.
type standard struct{ s stats.StandardScaler }

func newStandard(s dataset.ProcessorSpec) (Transform, error) {
	t := &standard{s: stats.StandardScaler{Mean: s.Param("mean", 0), Std: s.Param("std", 1)}}
	if t.s.Std == 0 {
		return nil, fmt.Errorf("pipeline: standard std must be non-zero")
	}
	return t, nil
}

func (t *standard) Fit(x []float64) error     { t.s.Fit(x); return nil }
func (t *standard) Forward(x float64) float64 { return t.s.Transform(x) }
func (t *standard) Inverse(y float64) float64 { return t.s.Inverse(y) }
func (t *standard) Spec() dataset.ProcessorSpec {
	return dataset.ProcessorSpec{Kind: "standard", Params: map[string]float64{"mean": t.s.Mean, "std": t.s.Std}}
}

// minmax: onto [0, 1], fitted.
type minmax struct{ s stats.MinMaxScaler }

func newMinMax(s dataset.ProcessorSpec) (Transform, error) {
	t := &minmax{s: stats.MinMaxScaler{Min: s.Param("min", 0), Max: s.Param("max", 1)}}
	if t.s.Max == t.s.Min {
		return nil, fmt.Errorf("pipeline: minmax range must be non-empty")
	}
	return t, nil
}

func (t *minmax) Fit(x []float64) error     { t.s.Fit(x); return nil }
func (t *minmax) Forward(x float64) float64 { return t.s.Transform(x) }
func (t *minmax) Inverse(y float64) float64 { return t.s.Inverse(y) }
func (t *minmax) Spec() dataset.ProcessorSpec {
	return dataset.ProcessorSpec{Kind: "minmax", Params: map[string]float64{"min": t.s.Min, "max": t.s.Max}}
}

// clip clamps both ways. Bounds are fixed (lo, hi) or fitted from percentiles.
// Missing bounds are open.
type clip struct {
	lo, hi       float64
	loPct, hiPct float64
	hasLo, hasHi bool
	fitLo, fitHi bool
}

func newClip(s dataset.ProcessorSpec) (Transform, error) {
	c := &clip{lo: math.Inf(-1), hi: math.Inf(1)}
	if v, ok := s.Params["lower_pct"]; ok {
		c.loPct, c.fitLo = v, true
	}
	if v, ok := s.Params["upper_pct"]; ok {
		c.hiPct, c.fitHi = v, true
	}
	if v, ok := s.Params["lo"]; ok {
		c.lo, c.hasLo = v, true
	}
	if v, ok := s.Params["hi"]; ok {
		c.hi, c.hasHi = v, true
	}
	if c.lo > c.hi {
		return nil, fmt.Errorf("pipeline: clip lo %g above hi %g", c.lo, c.hi)
	}
	return c, nil
}

func (c *clip) Fit(x []float64) error {
	lo, hi := stats.ClipBounds(x, c.loPct, c.hiPct)
	if c.fitLo {
		c.lo, c.hasLo = lo, true
	}
	if c.fitHi {
		c.hi, c.hasHi = hi, true
	}
	return nil
}

func (c *clip) Forward(x float64) float64 { return stats.Clamp(x, c.lo, c.hi) }
func (c *clip) Inverse(y float64) float64 { return stats.Clamp(y, c.lo, c.hi) }
func (c *clip) Spec() dataset.ProcessorSpec {
	p := map[string]float64{}
	if c.hasLo {
		p["lo"] = c.lo
	}
	if c.hasHi {
		p["hi"] = c.hi
	}
	if c.fitLo {
		p["lower_pct"] = c.loPct
	}
	if c.fitHi {
		p["upper_pct"] = c.hiPct
	}
	return dataset.ProcessorSpec{Kind: "clip", Params: p}
}

// logit: y = ln((x+eps)/(1-x+eps)) for fractions in [0, 1].
type logit struct{ eps float64 }

func newLogit(s dataset.ProcessorSpec) (Transform, error) {
	return logit{eps: s.Param("eps", 0)}, nil
}

func (l logit) Forward(x float64) float64 { return math.Log((x + l.eps) / (1 - x + l.eps)) }
func (l logit) Inverse(y float64) float64 {
	s := 1 / (1 + math.Exp(-y))
	return s*(1+2*l.eps) - l.eps
}
func (l logit) Spec() dataset.ProcessorSpec {
	return dataset.ProcessorSpec{Kind: "logit", Params: map[string]float64{"eps": l.eps}}
}

// dequantize spreads integer values over [x-w/2, x+w/2); the inverse snaps back to the grid.
type dequantize struct{ width float64 }

func newDequantize(s dataset.ProcessorSpec) (Transform, error) {
	d := dequantize{width: s.Param("width", 1)}
	if d.width <= 0 {
		return nil, fmt.Errorf("pipeline: dequantize width must be positive")
	}
	return d, nil
}

func (d dequantize) Forward(x float64) float64 { return x + (rand.Float64()-0.5)*d.width }
func (d dequantize) Inverse(y float64) float64 { return math.Floor(y/d.width+0.5) * d.width }
func (d dequantize) Spec() dataset.ProcessorSpec {
	return dataset.ProcessorSpec{Kind: "dequantize", Params: map[string]float64{"width": d.width}}
}
