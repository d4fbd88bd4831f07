package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
	"github.com/tigosprojects/tigos/internal/render"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

func successLine(message string) string {
	check := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	return check + " " + lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
}

func warningLine(message string) string {
	return lipgloss.NewStyle().Foreground(colorError).Render("⚠ " + message)
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// printReply writes an assistant reply as a markdown bubble sized to the terminal
func printReply(w io.Writer, text string, termWidth int) {
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	rendered, err := render.Markdown(text, render.LoadOptionsFromConfigWithWidth(contentWidth))
	if err != nil {
		rendered = text
	}
	rendered = strings.TrimRight(rendered, "\n")

	fmt.Fprintln(w, assistantLabelStyle.Render("✦ Tigos"))
	fmt.Fprintln(w, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	if context != "" {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))
	} else {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %v", err)))
	}

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.GetHTTPStatus(err) == 401 || apierrors.GetHTTPStatus(err) == 403:
		sb.WriteString(dimStyle.Render("\n  Hint: check the key with 'tigos auth status'"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: check your internet connection and try again"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: raise request_timeout_seconds in config.yaml ('tigos config path')"))
	case apierrors.IsCorrupt(err):
		sb.WriteString(dimStyle.Render("\n  Hint: the file was left untouched; fix or move it and retry"))
	}

	return sb.String()
}
