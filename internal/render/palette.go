package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors the TUI draws with.
type Palette struct {
	Name Theme

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color // user bubbles, focused borders
	Secondary lipgloss.Color // assistant bubbles
	Accent    lipgloss.Color // current thread marker
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var (
	DarkPalette = Palette{
		Name: ThemeDark,

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	LightPalette = Palette{
		Name: ThemeLight,

		Background: lipgloss.Color("#eff1f5"),
		Surface:    lipgloss.Color("#e6e9ef"),
		Border:     lipgloss.Color("#9ca0b0"),

		Primary:   lipgloss.Color("#1e66f5"),
		Secondary: lipgloss.Color("#40a02b"),
		Accent:    lipgloss.Color("#8839ef"),
		Warning:   lipgloss.Color("#df8e1d"),
		Error:     lipgloss.Color("#d20f39"),

		Text:     lipgloss.Color("#4c4f69"),
		TextDim:  lipgloss.Color("#6c6f85"),
		TextMute: lipgloss.Color("#acb0be"),
	}
)

// hasDarkBackground is swapped in tests.
var hasDarkBackground = lipgloss.HasDarkBackground

// PaletteFor resolves a theme to concrete colors. System asks the terminal.
func PaletteFor(t Theme) Palette {
	switch t {
	case ThemeLight:
		return LightPalette
	case ThemeSystem:
		if hasDarkBackground() {
			p := DarkPalette
			p.Name = ThemeSystem
			return p
		}
		p := LightPalette
		p.Name = ThemeSystem
		return p
	default:
		return DarkPalette
	}
}
