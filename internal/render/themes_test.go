package render

import (
	"strings"
	"testing"
)

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{"Dark", ThemeDark, false},
		{"light", ThemeLight, false},
		{" SYSTEM ", ThemeSystem, false},
		{"", DefaultTheme, false},
		{"solarized", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTheme(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTheme(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTheme(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTheme_MarkdownStyle(t *testing.T) {
	cases := map[Theme]string{
		ThemeDark:   "dark",
		ThemeLight:  "light",
		ThemeSystem: "auto",
		"whatever":  "dark",
	}
	for theme, want := range cases {
		if got := theme.MarkdownStyle(); got != want {
			t.Errorf("%q.MarkdownStyle() = %q, want %q", theme, got, want)
		}
	}
}

func TestIsBuiltinStyle(t *testing.T) {
	for _, name := range []string{"dark", "light", "auto", "dracula", "tokyo-night", "notty", "ascii"} {
		if !IsBuiltinStyle(name) {
			t.Errorf("IsBuiltinStyle(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "/tmp/style.json", "Dark"} {
		if IsBuiltinStyle(name) {
			t.Errorf("IsBuiltinStyle(%q) = true, want false", name)
		}
	}
}

func TestStyleNames(t *testing.T) {
	names := StyleNames()
	if len(names) != len(AvailableStyles()) {
		t.Fatalf("StyleNames() has %d entries, AvailableStyles() has %d", len(names), len(AvailableStyles()))
	}
	if names[0] != "dark" {
		t.Errorf("first style = %q, want dark", names[0])
	}
	if !IsBuiltinStyle("ascii") {
		t.Error("ascii should be a built-in style")
	}
}

func TestMarkdown_EveryThemeRenders(t *testing.T) {
	ClearCache()
	defer ClearCache()

	for _, theme := range Themes() {
		t.Run(string(theme), func(t *testing.T) {
			out, err := Markdown("# Hello\n\nsome `code`", DefaultOptions().WithStyle(theme.MarkdownStyle()))
			if err != nil {
				t.Fatalf("render with %s: %v", theme, err)
			}
			if !strings.Contains(out, "Hello") {
				t.Errorf("output missing heading: %q", out)
			}
		})
	}
}
