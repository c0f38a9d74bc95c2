package extract

import "fmt"

// ConfigError is a structural configuration mistake, such as a stage needing a column
// nothing produced. It aborts the run.
type ConfigError struct {
	Stage  string
	Column string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("extract: stage %s: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("extract: stage %s: column %q: %s", e.Stage, e.Column, e.Reason)
}

func missingColumn(stage, column string) error {
	return &ConfigError{Stage: stage, Column: column, Reason: "not produced by any previous stage"}
}
