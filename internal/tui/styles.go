// Package tui provides the terminal user interface for tigos.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tigosprojects/tigos/internal/errors"
	"github.com/tigosprojects/tigos/internal/render"
)

// palette is the active color set; styles below are rebuilt from it
var palette render.Palette

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	sidebarStyle        lipgloss.Style
	sidebarFocusedStyle lipgloss.Style
	threadItemStyle     lipgloss.Style
	threadCurrentStyle  lipgloss.Style
	threadCursorStyle   lipgloss.Style

	messagesAreaStyle    lipgloss.Style
	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	mediaStyle           lipgloss.Style

	inputPanelStyle        lipgloss.Style
	inputPanelBlurredStyle lipgloss.Style
	inputLabelStyle        lipgloss.Style
	loadingStyle           lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style
	errorStyle      lipgloss.Style

	panelStyle        lipgloss.Style
	panelTitleStyle   lipgloss.Style
	menuItemStyle     lipgloss.Style
	menuSelectedStyle lipgloss.Style
	menuCursorStyle   lipgloss.Style
	valueStyle        lipgloss.Style
	enabledStyle      lipgloss.Style
	disabledStyle     lipgloss.Style
)

func init() {
	ApplyTheme(render.DefaultTheme)
}

// ApplyTheme switches the palette and rebuilds every style
func ApplyTheme(theme render.Theme) {
	palette = render.PaletteFor(theme)
	rebuildStyles()
}

func rebuildStyles() {
	p := palette

	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(p.TextDim)
	hintStyle = lipgloss.NewStyle().Foreground(p.TextMute).Italic(true)

	sidebarStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	sidebarFocusedStyle = sidebarStyle.BorderForeground(p.Primary)

	threadItemStyle = lipgloss.NewStyle().Foreground(p.Text)
	threadCurrentStyle = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	threadCursorStyle = lipgloss.NewStyle().Foreground(p.Primary)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Foreground(p.Text).
		Padding(0, 1).
		MarginLeft(4)
	userLabelStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true).MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Foreground(p.Text).
		Padding(0, 1).
		MarginRight(4)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(p.Secondary).Bold(true)

	mediaStyle = lipgloss.NewStyle().Foreground(p.Accent).Italic(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
	inputPanelBlurredStyle = inputPanelStyle.BorderForeground(p.Border)
	inputLabelStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	loadingStyle = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)

	statusBarStyle = lipgloss.NewStyle().Foreground(p.TextMute)
	statusKeyStyle = lipgloss.NewStyle().Foreground(p.TextDim).Bold(true)
	statusDescStyle = lipgloss.NewStyle().Foreground(p.TextMute)
	noticeStyle = lipgloss.NewStyle().Foreground(p.Warning)
	errorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	panelTitleStyle = lipgloss.NewStyle().Foreground(p.Text).Bold(true).MarginBottom(1)
	menuItemStyle = lipgloss.NewStyle().Foreground(p.Text)
	menuSelectedStyle = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	menuCursorStyle = lipgloss.NewStyle().Foreground(p.Accent)
	valueStyle = lipgloss.NewStyle().Foreground(p.TextDim)
	enabledStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	disabledStyle = lipgloss.NewStyle().Foreground(p.Error)
}

// shortcut renders one key hint for a status bar
func shortcut(key, desc string) string {
	return statusKeyStyle.Render(key) + statusDescStyle.Render(" "+desc)
}

// FormatError returns a styled error with whatever context the error carries.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(palette.TextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case errors.IsCorrupt(err):
		sb.WriteString(dimStyle.Render("\n  Hint: fix or remove the file named above; it was left untouched"))
	case errors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: check your internet connection and try again"))
	case errors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: raise request_timeout_seconds in config.yaml"))
	}

	return sb.String()
}

// PrintError prints a styled error message.
func PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Println(FormatError(err))
}
