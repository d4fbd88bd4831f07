package render

import (
	"os"

	"github.com/tigosprojects/tigos/internal/config"
)

// StyleEnv overrides the configured markdown style.
const StyleEnv = "GLAMOUR_STYLE"

// LoadOptionsFromConfig loads render options from the config file.
// GLAMOUR_STYLE takes precedence over the file.
func LoadOptionsFromConfig() Options {
	opts := DefaultOptions()

	if cfg, err := config.LoadConfig(); err == nil {
		opts = ApplyConfig(opts, cfg.Markdown)
	}

	if style := os.Getenv(StyleEnv); style != "" {
		opts.Style = style
	}
	return opts
}

// ApplyConfig overlays the markdown section of the config onto opts.
func ApplyConfig(opts Options, md config.MarkdownConfig) Options {
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks
	return opts
}

// LoadOptionsFromConfigWithWidth loads options from config with a specific width.
func LoadOptionsFromConfigWithWidth(width int) Options {
	return LoadOptionsFromConfig().WithWidth(width)
}

// OptionsForTheme returns options whose style follows the settings theme.
// A non-default markdown.style in the config or GLAMOUR_STYLE wins over the theme.
func OptionsForTheme(theme Theme, width int) Options {
	opts := DefaultOptions()
	explicit := false
	if cfg, err := config.LoadConfig(); err == nil {
		opts = ApplyConfig(opts, cfg.Markdown)
		explicit = cfg.Markdown.Style != "" && cfg.Markdown.Style != config.DefaultMarkdownConfig().Style
	}
	if style := os.Getenv(StyleEnv); style != "" {
		opts.Style = style
		explicit = true
	}
	if !explicit {
		opts.Style = theme.MarkdownStyle()
	}
	return opts.WithWidth(width)
}
