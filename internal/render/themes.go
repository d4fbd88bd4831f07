package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour/styles"
)

// Theme is the appearance preference stored in user settings.
type Theme string

const (
	ThemeDark   Theme = "Dark"
	ThemeLight  Theme = "Light"
	ThemeSystem Theme = "System"
)

// DefaultTheme matches the settings default.
const DefaultTheme = ThemeDark

// Themes lists the values the settings view offers, in menu order.
func Themes() []Theme {
	return []Theme{ThemeDark, ThemeLight, ThemeSystem}
}

// ParseTheme accepts a theme name in any case. Empty input yields DefaultTheme.
func ParseTheme(s string) (Theme, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTheme, nil
	}
	for _, t := range Themes() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q (want Dark, Light or System)", s)
}

// MarkdownStyle returns the glamour style name for a theme.
// Unknown themes fall back to the dark style.
func (t Theme) MarkdownStyle() string {
	switch t {
	case ThemeLight:
		return styles.LightStyle
	case ThemeSystem:
		return styles.AutoStyle
	default:
		return styles.DarkStyle
	}
}

// StyleInfo describes a markdown style for `config show` style listings.
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles returns the glamour styles accepted by markdown.style.
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: styles.DarkStyle, Description: "Dark terminals (default)"},
		{Name: styles.LightStyle, Description: "Light terminals"},
		{Name: styles.AutoStyle, Description: "Follow the terminal background"},
		{Name: styles.DraculaStyle, Description: "Dracula color scheme"},
		{Name: styles.TokyoNightStyle, Description: "Tokyo Night color scheme"},
		{Name: styles.PinkStyle, Description: "Pink accents"},
		{Name: styles.NoTTYStyle, Description: "Plain text (no styling)"},
		{Name: styles.AsciiStyle, Description: "ASCII-only output"},
	}
}

// StyleNames returns just the style names.
func StyleNames() []string {
	all := AvailableStyles()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// IsBuiltinStyle reports whether style names a bundled glamour style
// rather than a path to a JSON style file.
func IsBuiltinStyle(style string) bool {
	for _, name := range StyleNames() {
		if name == style {
			return true
		}
	}
	return false
}
