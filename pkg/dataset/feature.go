package dataset

import "fmt"

// Role says whether a feature is given (conditioning) or generated (target).
type Role string

const (
	Conditioning Role = "conditioning"
	Target       Role = "target"
)

// DType is the numeric type a feature is read as.
type DType string

const (
	Float64 DType = "float64"
	Float32 DType = "float32"
	Int     DType = "int"
)

// ParseDType accepts the dtype names used in config files.
func ParseDType(s string) (DType, error) {
	switch s {
	case "float64", "double", "Double_t":
		return Float64, nil
	case "float32", "float", "Float_t":
		return Float32, nil
	case "int", "int32", "int64", "Int_t", "bool", "Bool_t", "uint8", "UChar_t":
		return Int, nil
	}
	return "", fmt.Errorf("dataset: unknown dtype %q", s)
}

// FeatureSpec describes one column of a training dataset.
// Identity is Name+Role; position inside its role list is the column order.
type FeatureSpec struct {
	Name         string `json:"name" yaml:"name"`
	Role         Role   `json:"role" yaml:"role"`
	DType        DType  `json:"dtype" yaml:"dtype"`
	SourceObject string `json:"source_object,omitempty" yaml:"source_object,omitempty"`
}

// Names returns the feature names in order.
func Names(specs []FeatureSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}
