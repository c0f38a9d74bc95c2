package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveConfig persists cfg as config.json (authoritative) and config.yaml (for humans).
func SaveConfig(folder string, cfg *DatasetConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	err := writeFileAtomic(filepath.Join(folder, ConfigFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	})
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(folder, ConfigYAMLFile), func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	})
}

// LoadConfig reads config.json from folder. config.yaml is never read back.
func LoadConfig(folder string) (*DatasetConfig, error) {
	b, err := os.ReadFile(filepath.Join(folder, ConfigFile))
	if err != nil {
		return nil, err
	}
	var cfg DatasetConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("dataset: decode %s: %w", ConfigFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
