package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pasenov/coverage/pkg/dataset"
)

var (
	// ErrUnknownKind is returned for a processor kind with no registered constructor.
	ErrUnknownKind = errors.New("pipeline: unknown processor kind")

	// ErrShape is returned when an input matrix does not have the columns a pipeline expects.
	ErrShape = errors.New("pipeline: input column count does not match the pipeline")
)

// Transform is an invertible per-value mapping between physical and network space.
type Transform interface {
	Forward(x float64) float64
	Inverse(y float64) float64
	// Spec returns the kind and current parameters, fitted ones included.
	Spec() dataset.ProcessorSpec
}

// Fitter is a Transform whose parameters are learned from a column of data.
type Fitter interface {
	Transform
	Fit(x []float64) error
}

// Constructor builds a Transform from its persisted spec.
type Constructor func(spec dataset.ProcessorSpec) (Transform, error)

var constructors = map[string]Constructor{}

// Register makes a processor kind available to New. It panics on duplicates.
func Register(kind string, c Constructor) {
	if _, dup := constructors[kind]; dup {
		panic("pipeline: processor kind registered twice: " + kind)
	}
	constructors[kind] = c
}

// New builds the processor described by spec.
func New(spec dataset.ProcessorSpec) (Transform, error) {
	c, ok := constructors[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
	return c(spec)
}

// Kinds lists the registered processor kinds.
func Kinds() []string {
	out := make([]string, 0, len(constructors))
	for k := range constructors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
