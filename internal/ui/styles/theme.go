package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for UI components
type Theme struct {
	Primary color.Color // spinner and headers
	Success color.Color // clean state, completed operations
	Error   color.Color // failures, modified files
	Muted   color.Color // secondary text
	Normal  color.Color // standard text
	Warning color.Color // skipped operations, staged files
}

// Preset themes
var (
	// DefaultTheme is the default color scheme
	DefaultTheme = Theme{
		Primary: lipgloss.Color("62"),  // cyan/teal
		Success: lipgloss.Color("82"),  // green
		Error:   lipgloss.Color("196"), // red
		Muted:   lipgloss.Color("240"), // dark gray
		Normal:  lipgloss.Color("252"), // light gray
		Warning: lipgloss.Color("214"), // orange
	}

	// DraculaTheme is based on the Dracula color scheme
	DraculaTheme = Theme{
		Primary: lipgloss.Color("#bd93f9"), // purple
		Success: lipgloss.Color("#50fa7b"), // green
		Error:   lipgloss.Color("#ff5555"), // red
		Muted:   lipgloss.Color("#6272a4"), // comment
		Normal:  lipgloss.Color("#f8f8f2"), // foreground
		Warning: lipgloss.Color("#ffb86c"), // orange
	}

	// NordTheme is based on the Nord color scheme
	NordTheme = Theme{
		Primary: lipgloss.Color("#88c0d0"), // nord8 (frost cyan)
		Success: lipgloss.Color("#a3be8c"), // nord14 (aurora green)
		Error:   lipgloss.Color("#bf616a"), // nord11 (aurora red)
		Muted:   lipgloss.Color("#4c566a"), // nord3 (polar night)
		Normal:  lipgloss.Color("#eceff4"), // nord6 (snow storm)
		Warning: lipgloss.Color("#ebcb8b"), // nord13 (aurora yellow)
	}

	// NoneTheme renders without any colors (uses terminal defaults)
	// Formatting (bold) is preserved
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Normal:  lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
	}
)

// presets maps theme names to palettes. Keep in sync with
// config.ValidThemeNames.
var presets = map[string]*Theme{
	"default": &DefaultTheme,
	"dracula": &DraculaTheme,
	"nord":    &NordTheme,
	"none":    &NoneTheme,
}

// currentTheme holds the active theme
var currentTheme = DefaultTheme

// Current returns the current theme
func Current() Theme {
	return currentTheme
}

// Init selects the named theme; unknown or empty names use the default.
// Call this after loading config and before rendering anything.
func Init(name string) {
	theme := DefaultTheme
	if p, ok := presets[name]; ok {
		theme = *p
	}
	currentTheme = theme
	applyTheme(theme)
}

// applyTheme updates all global style variables to use the given theme
func applyTheme(t Theme) {
	Primary = t.Primary
	Success = t.Success
	Error = t.Error
	Muted = t.Muted
	Normal = t.Normal
	Warning = t.Warning

	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	NormalStyle = lipgloss.NewStyle().Foreground(t.Normal)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
}

// GetPreset returns a theme preset by name, or nil if not found
func GetPreset(name string) *Theme {
	return presets[name]
}
