package registry

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/extract"
	"github.com/pasenov/coverage/pkg/pipeline"
)

// MaxFileSize bounds a config set file.
const MaxFileSize = 1 << 20

//go:embed sets/*.yaml
var builtinSets embed.FS

var (
	ErrUnknownSet     = errors.New("registry: unknown config set")
	ErrUnknownDataset = errors.New("registry: unknown dataset type")
)

// ConfigError reports a structurally invalid dataset type.
type ConfigError struct {
	Set     string
	Dataset string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("registry: set %s: %s", e.Set, e.Reason)
	}
	return fmt.Sprintf("registry: set %s: dataset %s: %s", e.Set, e.Dataset, e.Reason)
}

// DatasetType is the static description of one training dataset.
type DatasetType struct {
	Name         string                             `yaml:"name"`
	Type         string                             `yaml:"type"`
	Conditioning []dataset.FeatureSpec              `yaml:"conditioning"`
	Target       []dataset.FeatureSpec              `yaml:"target"`
	Matching     *dataset.Matching                  `yaml:"matching,omitempty"`
	Inputs       []string                           `yaml:"inputs,omitempty"`
	Stages       []extract.StageSpec                `yaml:"stages"`
	Processors   map[string][]dataset.ProcessorSpec `yaml:"processors,omitempty"`
}

// NewConfig returns a fresh DatasetConfig for this type.
func (t *DatasetType) NewConfig() *dataset.DatasetConfig {
	return dataset.NewConfig(t.Name, t.Type, t.Conditioning, t.Target, t.Matching)
}

// BuildStages builds the extraction stages preceding the dataset modules.
func (t *DatasetType) BuildStages() ([]extract.Stage, error) {
	return extract.Build(t.Stages)
}

func (t *DatasetType) validate(set string) error {
	fail := func(format string, args ...any) error {
		return &ConfigError{Set: set, Dataset: t.Name, Reason: fmt.Sprintf(format, args...)}
	}
	if t.Name == "" {
		return fail("missing name")
	}
	if t.Type != "vector" && t.Type != "scalar" {
		return fail("type must be vector or scalar, got %q", t.Type)
	}
	if len(t.Target) == 0 {
		return fail("no target features")
	}
	for i := range t.Conditioning {
		if t.Conditioning[i].Role == "" {
			t.Conditioning[i].Role = dataset.Conditioning
		}
		if t.Conditioning[i].DType == "" {
			t.Conditioning[i].DType = dataset.Float32
		}
	}
	for i := range t.Target {
		if t.Target[i].Role == "" {
			t.Target[i].Role = dataset.Target
		}
		if t.Target[i].DType == "" {
			t.Target[i].DType = dataset.Float32
		}
	}
	if _, err := t.NewConfig().ColumnMap(); err != nil {
		return fail("%v", err)
	}
	if _, err := t.BuildStages(); err != nil {
		return fail("%v", err)
	}
	for name, specs := range t.Processors {
		if _, err := pipeline.NewChain(specs); err != nil {
			return fail("processors of %q: %v", name, err)
		}
	}
	return nil
}

// ConfigSet is a named collection of dataset types (a "nanoversion").
type ConfigSet struct {
	Name     string
	Base     string
	Datasets map[string]*DatasetType
}

// Names lists the dataset types, sorted.
func (s *ConfigSet) Names() []string {
	out := make([]string, 0, len(s.Datasets))
	for k := range s.Datasets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type setFile struct {
	Sets []struct {
		Name     string         `yaml:"name"`
		Base     string         `yaml:"base,omitempty"`
		Datasets []*DatasetType `yaml:"datasets"`
	} `yaml:"sets"`
}

// Registry resolves config sets by name. It is filled once at startup.
type Registry struct {
	sets map[string]*ConfigSet
}

// Builtin returns a registry holding the embedded nanoV9 and nanoV12 sets.
func Builtin() (*Registry, error) {
	r := &Registry{sets: map[string]*ConfigSet{}}
	entries, err := builtinSets.ReadDir("sets")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		b, err := builtinSets.ReadFile(path.Join("sets", e.Name()))
		if err != nil {
			return nil, err
		}
		if err := r.Load(bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("builtin %s: %w", e.Name(), err)
		}
	}
	return r, nil
}

// LoadFile adds the sets of a YAML file. A set named like an existing one replaces it.
func (r *Registry) LoadFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.Load(io.LimitReader(f, MaxFileSize+1)); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Load adds the sets read from a YAML document. A set with a base starts as a
// copy of that set's dataset types; its own types are added on top, replacing
// any of the same name.
func (r *Registry) Load(rd io.Reader) error {
	b, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	if len(b) > MaxFileSize {
		return fmt.Errorf("registry: config file larger than %d bytes", MaxFileSize)
	}
	var f setFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	for _, s := range f.Sets {
		if s.Name == "" {
			return &ConfigError{Reason: "set without a name"}
		}
		set := &ConfigSet{Name: s.Name, Base: s.Base, Datasets: map[string]*DatasetType{}}
		if s.Base != "" {
			base, ok := r.sets[s.Base]
			if !ok {
				return &ConfigError{Set: s.Name, Reason: fmt.Sprintf("base set %q is not loaded", s.Base)}
			}
			for k, v := range base.Datasets {
				set.Datasets[k] = v
			}
		}
		for _, t := range s.Datasets {
			if err := t.validate(s.Name); err != nil {
				return err
			}
			set.Datasets[t.Name] = t
		}
		r.sets[s.Name] = set
	}
	return nil
}

// Sets lists the loaded set names, sorted.
func (r *Registry) Sets() []string {
	out := make([]string, 0, len(r.sets))
	for k := range r.sets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set returns the named config set.
func (r *Registry) Set(name string) (*ConfigSet, error) {
	s, ok := r.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownSet, name, r.Sets())
	}
	return s, nil
}

// Lookup returns the dataset type of a set.
func (r *Registry) Lookup(set, name string) (*DatasetType, error) {
	s, err := r.Set(set)
	if err != nil {
		return nil, err
	}
	t, ok := s.Datasets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s (have %v)", ErrUnknownDataset, name, set, s.Names())
	}
	return t, nil
}
