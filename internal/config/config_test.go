package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

var envKeys = []string{
	"GITLS_DEFAULT_DIR", "GITLS_MAX_DEPTH", "GITLS_SKIP_DIRS", "GITLS_INCLUDE_HIDDEN",
	"GITLS_NO_COLOR", "GITLS_THEME", "GITLS_SSH_USER", "GITLS_WORKERS", "GITLS_TIMEOUT",
	"NO_COLOR", EnvConfigPath,
}

// isolateEnv unsets every variable Load reads for the duration of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("max_depth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
	if cfg.SSHUser != DefaultSSHUser {
		t.Errorf("ssh_user = %q, want %q", cfg.SSHUser, DefaultSSHUser)
	}
	if cfg.DefaultDir != "" || cfg.Workers != 0 || cfg.Timeout.Duration != 0 {
		t.Errorf("unexpected non-zero defaults: %+v", cfg)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	isolateEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile(missing) error = %v", err)
	}
	if cfg.MaxDepth != DefaultMaxDepth || cfg.SSHUser != DefaultSSHUser {
		t.Errorf("LoadFile(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadFile_Values(t *testing.T) {
	isolateEnv(t)

	path := writeConfig(t, `
default_dir = "/srv/src"
max_depth = 2
skip_dirs = ["target", "build", "target"]
include_hidden = true
no_color = true
theme = "nord"
ssh_user = "deploy"
workers = 4
timeout = "45s"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error = %v", err)
	}

	if cfg.DefaultDir != "/srv/src" {
		t.Errorf("default_dir = %q", cfg.DefaultDir)
	}
	if cfg.MaxDepth != 2 {
		t.Errorf("max_depth = %d, want 2", cfg.MaxDepth)
	}
	if want := []string{"target", "build"}; !slices.Equal(cfg.SkipDirs, want) {
		t.Errorf("skip_dirs = %v, want %v", cfg.SkipDirs, want)
	}
	if !cfg.IncludeHidden || !cfg.NoColor {
		t.Errorf("bools = %v/%v, want true/true", cfg.IncludeHidden, cfg.NoColor)
	}
	if cfg.Theme != "nord" {
		t.Errorf("theme = %q, want nord", cfg.Theme)
	}
	if cfg.SSHUser != "deploy" {
		t.Errorf("ssh_user = %q, want deploy", cfg.SSHUser)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Workers)
	}
	if cfg.Timeout.Duration != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", cfg.Timeout)
	}
}

func TestLoadFile_ExpandsTilde(t *testing.T) {
	isolateEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadFile(writeConfig(t, `default_dir = "~/src"`))
	if err != nil {
		t.Fatalf("LoadFile error = %v", err)
	}
	if want := filepath.Join(home, "src"); cfg.DefaultDir != want {
		t.Errorf("default_dir = %q, want %q", cfg.DefaultDir, want)
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GITLS_MAX_DEPTH", "1")
	t.Setenv("GITLS_SSH_USER", "ci")
	t.Setenv("GITLS_SKIP_DIRS", "dist,out")
	t.Setenv("GITLS_TIMEOUT", "2m")
	t.Setenv("GITLS_DEFAULT_DIR", "/data")

	cfg, err := LoadFile(writeConfig(t, "max_depth = 3\nssh_user = \"deploy\"\n"))
	if err != nil {
		t.Fatalf("LoadFile error = %v", err)
	}
	if cfg.MaxDepth != 1 {
		t.Errorf("max_depth = %d, want 1 from env", cfg.MaxDepth)
	}
	if cfg.SSHUser != "ci" {
		t.Errorf("ssh_user = %q, want ci from env", cfg.SSHUser)
	}
	if want := []string{"dist", "out"}; !slices.Equal(cfg.SkipDirs, want) {
		t.Errorf("skip_dirs = %v, want %v", cfg.SkipDirs, want)
	}
	if cfg.Timeout.Duration != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m", cfg.Timeout)
	}
	if cfg.DefaultDir != "/data" {
		t.Errorf("default_dir = %q, want /data", cfg.DefaultDir)
	}
}

func TestLoadFile_NoColorEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("NO_COLOR", "1")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile error = %v", err)
	}
	if !cfg.NoColor {
		t.Error("no_color = false, want true with NO_COLOR set")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{name: "relative default_dir", content: `default_dir = "src"`, wantErr: "default_dir must be absolute"},
		{name: "negative depth", content: "max_depth = -2", wantErr: "invalid max_depth"},
		{name: "unknown theme", content: `theme = "solarized"`, wantErr: "invalid theme"},
		{name: "negative workers", content: "workers = -1", wantErr: "invalid workers"},
		{name: "bad timeout", content: `timeout = "soon"`, wantErr: "failed to parse"},
		{name: "malformed toml", content: "max_depth = = 3", wantErr: "failed to parse"},
		{name: "bad env", content: "", env: map[string]string{"GITLS_MAX_DEPTH": "deep"}, wantErr: "environment override"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadFile(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("LoadFile(%q) = nil error, want %q", tt.content, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			if cfg.MaxDepth != DefaultMaxDepth || cfg.SSHUser != DefaultSSHUser {
				t.Errorf("LoadFile on error = %+v, want defaults", cfg)
			}
		})
	}
}

func TestLoad_UsesConfigEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvConfigPath, writeConfig(t, "max_depth = 7"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.MaxDepth != 7 {
		t.Errorf("max_depth = %d, want 7", cfg.MaxDepth)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.DefaultDir = "/srv/src"
	cfg.SkipDirs = []string{"target"}
	cfg.Timeout.Duration = 90 * time.Second

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode error = %v", err)
	}
	if !strings.Contains(buf.String(), `timeout = "1m30s"`) {
		t.Errorf("encoded config missing timeout:\n%s", buf.String())
	}

	var back Config
	if err := toml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if back.DefaultDir != cfg.DefaultDir || back.MaxDepth != cfg.MaxDepth || back.Timeout != cfg.Timeout {
		t.Errorf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestValidatePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"", false},
		{"~", false},
		{"~/src", false},
		{"/abs/path", false},
		{".", true},
		{"../src", true},
		{"src", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			err := ValidatePath(tt.path, "default_dir")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv(EnvConfigPath, path)

	got, err := Init(false)
	if err != nil {
		t.Fatalf("Init error = %v", err)
	}
	if got != path {
		t.Errorf("Init path = %q, want %q", got, path)
	}

	if _, err := Init(false); err == nil {
		t.Error("second Init(false) = nil error, want already exists")
	}
	if _, err := Init(true); err != nil {
		t.Errorf("Init(true) error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load of generated config error = %v", err)
	}
	if cfg.MaxDepth != DefaultMaxDepth || cfg.SSHUser != DefaultSSHUser {
		t.Errorf("generated config = %+v, want defaults", cfg)
	}
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()

	for _, f := range append([]string{""}, ValidFormats...) {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	err := ValidateFormat("xml")
	if err == nil {
		t.Fatal("ValidateFormat(xml) = nil, want error")
	}
	if want := `invalid format "xml": must be "table", "json", or "yaml"`; err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
}
