package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "GITLS"

// EnvConfigPath names an alternative config file.
const EnvConfigPath = "GITLS_CONFIG"

// DefaultMaxDepth is how many directory levels below the root are searched.
const DefaultMaxDepth = 5

// DefaultSSHUser answers username requests when the remote URL has none.
const DefaultSSHUser = "git"

// Config holds the gitls configuration
type Config struct {
	DefaultDir    string   `toml:"default_dir,omitempty" json:"default_dir,omitempty" split_words:"true"`
	MaxDepth      int      `toml:"max_depth" json:"max_depth" split_words:"true"`
	SkipDirs      []string `toml:"skip_dirs" json:"skip_dirs" split_words:"true"`
	IncludeHidden bool     `toml:"include_hidden" json:"include_hidden" split_words:"true"`
	NoColor       bool     `toml:"no_color" json:"no_color" split_words:"true"`
	Theme         string   `toml:"theme,omitempty" json:"theme,omitempty"`
	SSHUser       string   `toml:"ssh_user" json:"ssh_user" split_words:"true"`
	Workers       int      `toml:"workers" json:"workers"`
	Timeout       Duration `toml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string. Empty means no duration.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration; zero encodes as empty.
func (d Duration) MarshalText() ([]byte, error) {
	if d.Duration == 0 {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// Default returns the default configuration
func Default() Config {
	return Config{
		MaxDepth: DefaultMaxDepth,
		SSHUser:  DefaultSSHUser,
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the config file location: $GITLS_CONFIG if set, otherwise
// ~/.config/gitls/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandPath(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gitls", "config.toml"), nil
}

// Load reads the config file at Path and applies environment overrides.
// A missing file is not an error. On error Default() is returned.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return fallback(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path and applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fallback(), fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fallback(), fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return fallback(), fmt.Errorf("environment override: %w", err)
	}
	if noColorEnv() {
		cfg.NoColor = true
	}

	if err := cfg.normalize(); err != nil {
		return fallback(), err
	}
	return cfg, nil
}

// fallback is the config used when loading fails.
func fallback() Config {
	cfg := Default()
	cfg.NoColor = noColorEnv()
	return cfg
}

// noColorEnv reports whether NO_COLOR is set to any non-empty value.
func noColorEnv() bool {
	return os.Getenv("NO_COLOR") != ""
}

// normalize validates the config and fills derived values.
func (c *Config) normalize() error {
	if err := ValidatePath(c.DefaultDir, "default_dir"); err != nil {
		return err
	}
	expanded, err := expandPath(c.DefaultDir)
	if err != nil {
		return fmt.Errorf("expand default_dir: %w", err)
	}
	c.DefaultDir = expanded

	if c.MaxDepth < 0 {
		return fmt.Errorf("invalid max_depth %d: must be >= 0", c.MaxDepth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must be >= 0", c.Workers)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("invalid timeout %s: must not be negative", c.Timeout)
	}
	if err := validateEnum(c.Theme, "theme", ValidThemeNames); err != nil {
		return err
	}
	if c.SSHUser == "" {
		c.SSHUser = DefaultSSHUser
	}
	c.SkipDirs = appendUnique(nil, c.SkipDirs)
	return nil
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

const defaultConfig = `# gitls configuration

# Directory scanned when no directory argument is given.
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# default_dir = "~/src"

# How many directory levels below the root are searched (default: 5)
max_depth = 5

# Directory names never descended into, in addition to vendor, node_modules
# and .git
# skip_dirs = ["target", "build"]

# Descend into hidden directories (same as -a)
# include_hidden = false

# Disable colour (also honoured: NO_COLOR and GITLS_NO_COLOR)
# no_color = false

# Colour theme: "default", "dracula", "nord" or "none"
# theme = "default"

# User name offered to SSH remotes whose URL carries none
ssh_user = "git"

# Worker goroutines; 0 picks the CPU count. Never more than 8.
# workers = 0

# Per-repository deadline for fetch and pull, e.g. "30s". Empty means none.
# timeout = ""

# Every key can be overridden from the environment:
#   GITLS_DEFAULT_DIR, GITLS_MAX_DEPTH, GITLS_SKIP_DIRS (comma separated),
#   GITLS_INCLUDE_HIDDEN, GITLS_NO_COLOR, GITLS_THEME, GITLS_SSH_USER,
#   GITLS_WORKERS, GITLS_TIMEOUT
#
# A .gitls.toml in the scanned directory can override max_depth, skip_dirs
# and include_hidden for that tree.
`

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}
	return path, nil
}
