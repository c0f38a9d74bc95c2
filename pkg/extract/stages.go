package extract

import (
	"fmt"
	"math"

	"github.com/pasenov/coverage/pkg/dataset"
)

// Stage consumes the batch state and returns it with new columns defined.
type Stage interface {
	Name() string
	Run(b *Batch) (*Batch, error)
}

// StageSpec declares a stage in a config set.
type StageSpec struct {
	Kind    string   `json:"kind" yaml:"kind"`
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	Index   string   `json:"index,omitempty" yaml:"index,omitempty"`
	Prefix  string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Op      string   `json:"op,omitempty" yaml:"op,omitempty"`
	Inputs  []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Value   float64  `json:"value,omitempty" yaml:"value,omitempty"`
}

// Build turns specs into stages, in order.
func Build(specs []StageSpec) ([]Stage, error) {
	out := make([]Stage, 0, len(specs))
	for i, s := range specs {
		var st Stage
		switch s.Kind {
		case "require":
			st = Require{Columns: s.Columns}
		case "explode":
			if len(s.Columns) == 0 || s.Prefix == "" {
				return nil, &ConfigError{Stage: "explode", Reason: fmt.Sprintf("spec %d needs columns and a prefix", i)}
			}
			st = Explode{Columns: s.Columns, Prefix: s.Prefix}
		case "gather":
			if s.Index == "" || len(s.Columns) == 0 {
				return nil, &ConfigError{Stage: "gather", Reason: fmt.Sprintf("spec %d needs an index and columns", i)}
			}
			st = Gather{Index: s.Index, Columns: s.Columns, Prefix: s.Prefix}
		case "reduce":
			r, err := NewReduce(s.Name, s.Op, s.Inputs)
			if err != nil {
				return nil, err
			}
			st = r
		case "define":
			d, err := NewDefine(s.Name, s.Op, s.Inputs, s.Value)
			if err != nil {
				return nil, err
			}
			st = d
		default:
			return nil, &ConfigError{Stage: s.Kind, Reason: fmt.Sprintf("spec %d: unknown stage kind", i)}
		}
		out = append(out, st)
	}
	return out, nil
}

// Require fails when any column is absent.
type Require struct{ Columns []string }

func (Require) Name() string { return "require" }

func (r Require) Run(b *Batch) (*Batch, error) {
	for _, c := range r.Columns {
		_, row := b.cols[c]
		_, jag := b.jagged[c]
		if !row && !jag {
			return nil, missingColumn(r.Name(), c)
		}
	}
	return b, nil
}

// Explode turns the jagged columns of one collection into per-object rows.
// Event-level columns are broadcast to every object of their event. The stage adds
// <Prefix>_eventIndex (global event number) and <Prefix>_objectIndex.
type Explode struct {
	Columns []string
	Prefix  string
}

func (Explode) Name() string { return "explode" }

func (x Explode) Run(b *Batch) (*Batch, error) {
	if b.exploded {
		return nil, &ConfigError{Stage: x.Name(), Column: x.Prefix, Reason: "batch rows are already objects"}
	}
	lists := make([][][]float64, len(x.Columns))
	for i, c := range x.Columns {
		v, ok := b.jagged[c]
		if !ok {
			return nil, missingColumn(x.Name(), c)
		}
		lists[i] = v
	}

	var rows int
	for e := 0; e < b.rows; e++ {
		n := len(lists[0][e])
		for i := 1; i < len(lists); i++ {
			if len(lists[i][e]) != n {
				return nil, fmt.Errorf("extract: explode %s: event %d: %q has %d objects, %q has %d",
					x.Prefix, b.Start+int64(e), x.Columns[0], n, x.Columns[i], len(lists[i][e]))
			}
		}
		rows += n
	}

	out := &Batch{
		Index:    b.Index,
		Start:    b.Start,
		End:      b.End,
		rows:     rows,
		event:    make([]int, 0, rows),
		exploded: true,
		cols:     make(map[string][]float64, len(b.cols)+len(x.Columns)+2),
		jagged:   b.jagged,
		dtypes:   b.dtypes,
	}
	objIdx := make([]float64, 0, rows)
	for e := 0; e < b.rows; e++ {
		for k := range lists[0][e] {
			out.event = append(out.event, e)
			objIdx = append(objIdx, float64(k))
		}
	}
	for name, v := range b.cols {
		bc := make([]float64, rows)
		for r, e := range out.event {
			bc[r] = v[e]
		}
		out.cols[name] = bc
	}
	for i, c := range x.Columns {
		flat := make([]float64, 0, rows)
		for e := 0; e < b.rows; e++ {
			flat = append(flat, lists[i][e]...)
		}
		out.cols[c] = flat
	}
	evIdx := make([]float64, rows)
	for r, e := range out.event {
		evIdx[r] = float64(b.Start) + float64(e)
	}
	out.cols[x.Prefix+"_eventIndex"] = evIdx
	out.cols[x.Prefix+"_objectIndex"] = objIdx
	out.dtypes[x.Prefix+"_eventIndex"] = dataset.Int
	out.dtypes[x.Prefix+"_objectIndex"] = dataset.Int
	return out, nil
}

// Gather picks, for every row, element Index of each jagged column in the row's event.
// The result is stored as Prefix+column; an out-of-range index gives NaN.
type Gather struct {
	Index   string
	Columns []string
	Prefix  string
}

func (Gather) Name() string { return "gather" }

func (g Gather) Run(b *Batch) (*Batch, error) {
	idx, ok := b.cols[g.Index]
	if !ok {
		return nil, missingColumn(g.Name(), g.Index)
	}
	for _, c := range g.Columns {
		lists, ok := b.jagged[c]
		if !ok {
			return nil, missingColumn(g.Name(), c)
		}
		out := make([]float64, b.rows)
		for r := range out {
			list := lists[b.event[r]]
			k := idx[r]
			if math.IsNaN(k) || k < 0 || int(k) >= len(list) {
				out[r] = math.NaN()
				continue
			}
			out[r] = list[int(k)]
		}
		if err := b.Set(g.Prefix+c, out, b.DType(c)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Reduce folds a jagged column into one value per row, taken over the row's event.
type Reduce struct {
	Column string
	Op     string
	Input  string
}

var reduceOps = map[string]func(v []float64) float64{
	"sum": func(v []float64) float64 {
		s := 0.0
		for _, x := range v {
			s += x
		}
		return s
	},
	"count": func(v []float64) float64 { return float64(len(v)) },
	"max": func(v []float64) float64 {
		m := math.Inf(-1)
		for _, x := range v {
			m = math.Max(m, x)
		}
		return m
	},
	"min": func(v []float64) float64 {
		m := math.Inf(1)
		for _, x := range v {
			m = math.Min(m, x)
		}
		return m
	},
}

// NewReduce validates a reduction. max and min of an empty list are ∓Inf.
func NewReduce(name, op string, inputs []string) (*Reduce, error) {
	if _, ok := reduceOps[op]; !ok {
		return nil, &ConfigError{Stage: "reduce", Column: name, Reason: fmt.Sprintf("unknown op %q", op)}
	}
	if name == "" || len(inputs) != 1 {
		return nil, &ConfigError{Stage: "reduce", Column: name, Reason: "needs a name and exactly one input"}
	}
	return &Reduce{Column: name, Op: op, Input: inputs[0]}, nil
}

func (*Reduce) Name() string { return "reduce" }

func (x *Reduce) Run(b *Batch) (*Batch, error) {
	lists, ok := b.jagged[x.Input]
	if !ok {
		return nil, missingColumn(x.Name(), x.Input)
	}
	fn := reduceOps[x.Op]
	out := make([]float64, b.rows)
	for r := range out {
		out[r] = fn(lists[b.event[r]])
	}
	dt := b.DType(x.Input)
	if x.Op == "count" {
		dt = dataset.Int
	}
	if err := b.Set(x.Column, out, dt); err != nil {
		return nil, err
	}
	return b, nil
}

// Define computes a row-aligned column from other row-aligned columns.
type Define struct {
	Column string
	Op     string
	Inputs []string
	Value  float64
	fn     func(in []float64) float64
	arity  int
}

var defineOps = map[string]struct {
	arity int
	fn    func(in []float64, v float64) float64
}{
	"copy":  {1, func(in []float64, _ float64) float64 { return in[0] }},
	"abs":   {1, func(in []float64, _ float64) float64 { return math.Abs(in[0]) }},
	"ratio": {2, func(in []float64, _ float64) float64 { return in[0] / in[1] }},
	"diff":  {2, func(in []float64, _ float64) float64 { return in[0] - in[1] }},
	"sum": {-1, func(in []float64, _ float64) float64 {
		s := 0.0
		for _, x := range in {
			s += x
		}
		return s
	}},
	"ge": {1, func(in []float64, v float64) float64 { return bool2f(in[0] >= v) }},
	"gt": {1, func(in []float64, v float64) float64 { return bool2f(in[0] > v) }},
	"lt": {1, func(in []float64, v float64) float64 { return bool2f(in[0] < v) }},
	"ne": {1, func(in []float64, v float64) float64 { return bool2f(in[0] != v) }},
	"fillnan": {1, func(in []float64, v float64) float64 {
		if math.IsNaN(in[0]) {
			return v
		}
		return in[0]
	}},
}

func bool2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// NewDefine validates the op and its input count.
func NewDefine(name, op string, inputs []string, value float64) (*Define, error) {
	o, ok := defineOps[op]
	if !ok {
		return nil, &ConfigError{Stage: "define", Column: name, Reason: fmt.Sprintf("unknown op %q", op)}
	}
	if name == "" || (o.arity > 0 && len(inputs) != o.arity) || len(inputs) == 0 {
		return nil, &ConfigError{Stage: "define", Column: name, Reason: fmt.Sprintf("op %q takes %d inputs, got %d", op, o.arity, len(inputs))}
	}
	return &Define{
		Column: name,
		Op:     op,
		Inputs: inputs,
		Value:  value,
		arity:  o.arity,
		fn:     func(in []float64) float64 { return o.fn(in, value) },
	}, nil
}

func (*Define) Name() string { return "define" }

func (d *Define) Run(b *Batch) (*Batch, error) {
	cols := make([][]float64, len(d.Inputs))
	for i, c := range d.Inputs {
		v, ok := b.cols[c]
		if !ok {
			return nil, missingColumn(d.Name(), c)
		}
		cols[i] = v
	}
	out := make([]float64, b.rows)
	in := make([]float64, len(cols))
	for r := range out {
		for i := range cols {
			in[i] = cols[i][r]
		}
		out[r] = d.fn(in)
	}
	dt := dataset.Float64
	switch d.Op {
	case "ge", "gt", "lt", "ne":
		dt = dataset.Int
	case "copy", "abs", "fillnan":
		dt = b.DType(d.Inputs[0])
	}
	if err := b.Set(d.Column, out, dt); err != nil {
		return nil, err
	}
	return b, nil
}
