package data

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Open picks a Source implementation from the file extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".root":
		return OpenRoot(path)
	case ".csv":
		return OpenCSV(path)
	}
	return nil, fmt.Errorf("data: %s: unsupported input format", path)
}
