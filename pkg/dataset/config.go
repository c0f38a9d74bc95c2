package dataset

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the version written into every persisted DatasetConfig.
const SchemaVersion = 1

// Placeholder is the conditioning feature prepended to reserve a column
// when the matching configuration is heterogeneous.
const Placeholder = ""

// Ref names one column, or a list of columns for heterogeneous matching.
// The single/list distinction survives a JSON or YAML round trip.
type Ref struct {
	Names []string
	List  bool
}

// One refers to a single column.
func One(name string) Ref { return Ref{Names: []string{name}} }

// Many refers to a list of columns.
func Many(names ...string) Ref { return Ref{Names: names, List: true} }

func (r Ref) IsZero() bool { return len(r.Names) == 0 && !r.List }

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.List {
		return json.Marshal(r.Names)
	}
	if len(r.Names) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(r.Names[0])
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Ref{}
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*r = One(one)
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("dataset: column reference must be a string or a list of strings: %w", err)
	}
	*r = Many(many...)
	return nil
}

func (r Ref) MarshalYAML() (interface{}, error) {
	if r.List {
		return r.Names, nil
	}
	if len(r.Names) == 0 {
		return nil, nil
	}
	return r.Names[0], nil
}

func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = One(node.Value)
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		*r = Many(many...)
		return nil
	}
	return fmt.Errorf("dataset: line %d: column reference must be a string or a list", node.Line)
}

// Matching ties conditioning objects to target objects.
type Matching struct {
	TargetMask        Ref `json:"target_mask" yaml:"target_mask"`
	ConditioningIndex Ref `json:"conditioning_index" yaml:"conditioning_index"`
	TargetIndex       Ref `json:"target_index" yaml:"target_index"`
}

// Heterogeneous reports whether the mask or the target index is list-valued.
func (m *Matching) Heterogeneous() bool {
	return m != nil && (m.TargetMask.List || m.TargetIndex.List)
}

// Columns lists every column the matching refers to, masks first.
func (m *Matching) Columns() []string {
	if m == nil {
		return nil
	}
	var out []string
	out = append(out, m.TargetMask.Names...)
	out = append(out, m.ConditioningIndex.Names...)
	out = append(out, m.TargetIndex.Names...)
	return out
}

// ProcessorSpec is one step of a feature's transform chain, with its (possibly fitted) parameters.
type ProcessorSpec struct {
	Kind   string             `json:"kind" yaml:"kind"`
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// Param returns the named parameter or def when it is absent.
func (p ProcessorSpec) Param(name string, def float64) float64 {
	if v, ok := p.Params[name]; ok {
		return v
	}
	return def
}

// DatasetConfig describes the columns of a persisted array and how to normalize them.
// Column order is ConditioningFeatures ++ TargetFeatures.
type DatasetConfig struct {
	SchemaVersion        int                        `json:"schema_version" yaml:"schema_version"`
	Name                 string                     `json:"name" yaml:"name"`
	Type                 string                     `json:"type" yaml:"type"`
	ConditioningFeatures []string                   `json:"conditioning_features" yaml:"conditioning_features"`
	TargetFeatures       []string                   `json:"target_features" yaml:"target_features"`
	Matching             *Matching                  `json:"matching,omitempty" yaml:"matching,omitempty"`
	OutTypes             map[string]DType           `json:"out_types,omitempty" yaml:"out_types,omitempty"`
	TransformParams      map[string][]ProcessorSpec `json:"transform_params,omitempty" yaml:"transform_params,omitempty"`
	RunID                string                     `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	CreatedAt            time.Time                  `json:"created_at" yaml:"created_at"`
}

// NewConfig builds the config for a dataset. When the matching is heterogeneous
// the placeholder feature is prepended to the conditioning features.
func NewConfig(name, typ string, cond, target []FeatureSpec, matching *Matching) *DatasetConfig {
	condNames := Names(cond)
	if matching.Heterogeneous() {
		condNames = append([]string{Placeholder}, condNames...)
	}
	return &DatasetConfig{
		SchemaVersion:        SchemaVersion,
		Name:                 name,
		Type:                 typ,
		ConditioningFeatures: condNames,
		TargetFeatures:       Names(target),
		Matching:             matching,
		TransformParams:      map[string][]ProcessorSpec{},
	}
}

// HasPlaceholder reports whether the first conditioning column is the reserved placeholder.
func (c *DatasetConfig) HasPlaceholder() bool {
	return len(c.ConditioningFeatures) > 0 && c.ConditioningFeatures[0] == Placeholder
}

// Features returns ConditioningFeatures ++ TargetFeatures.
func (c *DatasetConfig) Features() []string {
	out := make([]string, 0, len(c.ConditioningFeatures)+len(c.TargetFeatures))
	out = append(out, c.ConditioningFeatures...)
	return append(out, c.TargetFeatures...)
}

// NumColumns is the column count of the array this config describes.
func (c *DatasetConfig) NumColumns() int {
	return len(c.ConditioningFeatures) + len(c.TargetFeatures)
}

// ColumnMap derives name → column strictly from ConditioningFeatures ++ TargetFeatures.
func (c *DatasetConfig) ColumnMap() (map[string]int, error) {
	cols := make(map[string]int, c.NumColumns())
	for i, name := range c.Features() {
		if name == Placeholder && !(i == 0 && c.HasPlaceholder()) {
			return nil, fmt.Errorf("%w at column %d", ErrEmptyFeature, i)
		}
		if _, dup := cols[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateFeature, name)
		}
		cols[name] = i
	}
	return cols, nil
}

// Validate checks the invariants a reader relies on.
func (c *DatasetConfig) Validate() error {
	if c.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: %d", ErrSchemaVersion, c.SchemaVersion)
	}
	_, err := c.ColumnMap()
	return err
}
