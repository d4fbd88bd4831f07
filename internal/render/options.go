// Package render turns assistant replies into styled terminal markdown and holds the TUI palettes.
package render

// Options selects how a reply is rendered. The zero value is usable but
// renders without emoji or table wrapping; start from DefaultOptions.
type Options struct {
	Width int
	// Style is a built-in glamour style name or a path to a JSON style file.
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions matches the "dark" theme at 80 columns.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

func (o Options) WithEmoji(on bool) Options {
	o.EnableEmoji = on
	return o
}

func (o Options) WithPreserveNewLines(on bool) Options {
	o.PreserveNewLines = on
	return o
}

func (o Options) WithTableWrap(on bool) Options {
	o.TableWrap = on
	return o
}

func (o Options) WithInlineTableLinks(on bool) Options {
	o.InlineTableLinks = on
	return o
}
