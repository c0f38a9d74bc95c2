package dataset

import "errors"

var (
	// ErrDuplicateFeature is returned when a name appears twice in conditioning ++ target.
	ErrDuplicateFeature = errors.New("dataset: duplicate feature name")

	// ErrColumnCount means the persisted array and its config disagree on the column count.
	ErrColumnCount = errors.New("dataset: array column count does not match config")

	// ErrSchemaVersion is returned for a config written by an unknown schema version.
	ErrSchemaVersion = errors.New("dataset: unsupported config schema version")

	// ErrEmptyArray is returned when asked to persist an array with no columns.
	ErrEmptyArray = errors.New("dataset: refusing to persist an empty array")

	// ErrArrayLayout is returned for .npy files that are not 2-D C-ordered float arrays.
	ErrArrayLayout = errors.New("dataset: unsupported .npy layout")

	// ErrEmptyFeature is returned for an empty feature name outside the placeholder slot.
	ErrEmptyFeature = errors.New("dataset: empty feature name")
)
