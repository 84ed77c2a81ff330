// Package config handles loading and validation of gitls configuration.
//
// Configuration is read from ~/.config/gitls/config.toml (or the file named
// by GITLS_CONFIG) with environment variable overrides for every key.
//
// # Configuration Sources (highest priority first)
//
//   - Command line flags (applied by the caller)
//   - A .gitls.toml in the scan root (max_depth, skip_dirs, include_hidden)
//   - GITLS_* env vars, e.g. GITLS_MAX_DEPTH or GITLS_SSH_USER
//   - Config file settings
//   - Default values
//
// NO_COLOR set to any non-empty value also disables colour.
//
// # Key Settings
//
//   - default_dir: Directory scanned when no argument is given (must be absolute or ~/...)
//   - max_depth: Directory levels searched below the root (default: 5)
//   - skip_dirs: Extra directory names never descended into
//   - ssh_user: User offered to SSH remotes (default: "git")
//   - no_color, theme: Colour output and palette ("default", "dracula", "nord", "none")
//   - workers, timeout: Pool size and per-repository network deadline
//
// # Path Validation
//
// Directory paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
