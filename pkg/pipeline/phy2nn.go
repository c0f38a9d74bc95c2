package pipeline

import (
	"fmt"

	"github.com/pasenov/coverage/pkg/core"
	"github.com/pasenov/coverage/pkg/dataset"
)

// Func maps a batch of rows between physical and network space.
type Func func(m *core.Matrix) (*core.Matrix, error)

// Processors are the four mappings a training run and its consumers need.
//
//   - TrainPhy2NN: [cond..., target...] → same layout, normalized.
//   - ValidationNN2Phy: [target_nn..., cond_phys...] → [target_phys..., cond_phys...];
//     conditioning columns pass through unchanged.
//   - InferencePhy2NN, InferenceNN2Phy: the same without the placeholder column,
//     which only exists for heterogeneous matching.
type Processors struct {
	TrainPhy2NN      Func
	ValidationNN2Phy Func
	InferencePhy2NN  Func
	InferenceNN2Phy  Func
}

// Pipeline holds one chain per column of a dataset.
type Pipeline struct {
	cond        []*Chain
	target      []*Chain
	placeholder bool
}

// Fit builds chains from specs, fits each on its column of data (physical space) and
// writes the fitted parameters into cfg.TransformParams.
func Fit(cfg *dataset.DatasetConfig, specs map[string][]dataset.ProcessorSpec, data *core.Matrix) (*Pipeline, error) {
	if data.C != cfg.NumColumns() {
		return nil, fmt.Errorf("%w: data has %d columns, config lists %d", ErrShape, data.C, cfg.NumColumns())
	}
	p, err := build(cfg, specs)
	if err != nil {
		return nil, err
	}
	chains := p.all()
	if cfg.TransformParams == nil {
		cfg.TransformParams = map[string][]dataset.ProcessorSpec{}
	}
	for j, name := range cfg.Features() {
		if j == 0 && p.placeholder {
			continue
		}
		if err := chains[j].Fit(data.Col(j)); err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		cfg.TransformParams[name] = chains[j].Specs()
	}
	return p, nil
}

// FromConfig rebuilds the pipeline from persisted parameters, without refitting.
func FromConfig(cfg *dataset.DatasetConfig) (*Pipeline, error) {
	return build(cfg, cfg.TransformParams)
}

func build(cfg *dataset.DatasetConfig, specs map[string][]dataset.ProcessorSpec) (*Pipeline, error) {
	p := &Pipeline{placeholder: cfg.HasPlaceholder()}
	for i, name := range cfg.ConditioningFeatures {
		var s []dataset.ProcessorSpec
		if !(i == 0 && p.placeholder) {
			s = specs[name]
		}
		c, err := NewChain(s)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		p.cond = append(p.cond, c)
	}
	for _, name := range cfg.TargetFeatures {
		c, err := NewChain(specs[name])
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		p.target = append(p.target, c)
	}
	return p, nil
}

func (p *Pipeline) all() []*Chain {
	out := make([]*Chain, 0, len(p.cond)+len(p.target))
	out = append(out, p.cond...)
	return append(out, p.target...)
}

// NumConditioning counts conditioning columns, placeholder included.
func (p *Pipeline) NumConditioning() int { return len(p.cond) }

// NumTarget counts target columns.
func (p *Pipeline) NumTarget() int { return len(p.target) }

// Processors returns the four mappings of this pipeline.
func (p *Pipeline) Processors() Processors {
	infCond := p.cond
	if p.placeholder {
		infCond = p.cond[1:]
	}
	return Processors{
		TrainPhy2NN:      forward(append(append([]*Chain{}, p.cond...), p.target...)),
		ValidationNN2Phy: inverse(p.target, len(p.cond)),
		InferencePhy2NN:  forward(append(append([]*Chain{}, infCond...), p.target...)),
		InferenceNN2Phy:  inverse(p.target, len(infCond)),
	}
}

func forward(chains []*Chain) Func {
	return func(m *core.Matrix) (*core.Matrix, error) {
		if m.C != len(chains) {
			return nil, fmt.Errorf("%w: got %d columns, want %d", ErrShape, m.C, len(chains))
		}
		out := m.Clone()
		err := out.ApplyCols(func(j int, col []float64) error {
			for i, v := range col {
				col[i] = chains[j].Forward(v)
			}
			return nil
		})
		return out, err
	}
}

// inverse maps the leading target columns back; the nCond trailing columns pass through.
func inverse(targets []*Chain, nCond int) Func {
	return func(m *core.Matrix) (*core.Matrix, error) {
		if m.C != len(targets)+nCond {
			return nil, fmt.Errorf("%w: got %d columns, want %d", ErrShape, m.C, len(targets)+nCond)
		}
		out := m.Clone()
		err := out.ApplyCols(func(j int, col []float64) error {
			if j >= len(targets) {
				return nil
			}
			for i, v := range col {
				col[i] = targets[j].Inverse(v)
			}
			return nil
		})
		return out, err
	}
}
