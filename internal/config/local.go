package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-tree override file looked up in the scan root.
const LocalConfigFileName = ".gitls.toml"

// LocalConfig holds overrides from a .gitls.toml in the scan root.
// Pointer fields indicate "not set" (inherit from global).
type LocalConfig struct {
	MaxDepth      *int     `toml:"max_depth"`
	SkipDirs      []string `toml:"skip_dirs"` // appended to global
	IncludeHidden *bool    `toml:"include_hidden"`
}

// LoadLocal reads the .gitls.toml in root.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(root string) (*LocalConfig, error) {
	configFile := filepath.Join(root, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var local LocalConfig
	if err := toml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	if local.MaxDepth != nil && *local.MaxDepth < 0 {
		return nil, fmt.Errorf("invalid max_depth %d in %s: must be >= 0", *local.MaxDepth, configFile)
	}

	return &local, nil
}
