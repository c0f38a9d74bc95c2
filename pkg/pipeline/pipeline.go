package pipeline

import (
	"fmt"

	"github.com/pasenov/coverage/pkg/dataset"
)

// Chain composes the processors of one feature. Forward runs first to last,
// Inverse runs last to first.
type Chain struct {
	steps []Transform
}

// NewChain builds a chain from persisted specs. No specs means identity.
func NewChain(specs []dataset.ProcessorSpec) (*Chain, error) {
	c := &Chain{steps: make([]Transform, 0, len(specs))}
	for i, s := range specs {
		t, err := New(s)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		c.steps = append(c.steps, t)
	}
	return c, nil
}

// Fit fits every Fitter step on x as transformed by the steps before it. x is not modified.
func (c *Chain) Fit(x []float64) error {
	work := make([]float64, len(x))
	copy(work, x)
	for i, step := range c.steps {
		if f, ok := step.(Fitter); ok {
			if err := f.Fit(work); err != nil {
				return fmt.Errorf("fit step %d (%s): %w", i, step.Spec().Kind, err)
			}
		}
		for k, v := range work {
			work[k] = step.Forward(v)
		}
	}
	return nil
}

func (c *Chain) Forward(x float64) float64 {
	for _, step := range c.steps {
		x = step.Forward(x)
	}
	return x
}

func (c *Chain) Inverse(y float64) float64 {
	for i := len(c.steps) - 1; i >= 0; i-- {
		y = c.steps[i].Inverse(y)
	}
	return y
}

// Specs returns the chain's steps with their current parameters.
func (c *Chain) Specs() []dataset.ProcessorSpec {
	out := make([]dataset.ProcessorSpec, len(c.steps))
	for i, s := range c.steps {
		out[i] = s.Spec()
	}
	return out
}
