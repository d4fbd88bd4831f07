package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleReply looks like a typical chat answer
const sampleReply = "## Reading a file in Go\n\n" +
	"Use **os.ReadFile** when the file fits in memory:\n\n" +
	"```go\n" +
	"data, err := os.ReadFile(\"notes.txt\")\n" +
	"```\n\n" +
	"| Approach | Streams |\n" +
	"|----------|---------|\n" +
	"| os.ReadFile | no |\n" +
	"| bufio.Scanner | yes |\n\n" +
	"- check `err`\n" +
	"- close what you open :rocket:\n"

func TestDefaultOptions(t *testing.T) {
	assert.Equal(t, Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}, DefaultOptions())
}

func TestOptionsBuilders(t *testing.T) {
	base := DefaultOptions()
	opts := base.
		WithWidth(100).
		WithStyle("light").
		WithEmoji(false).
		WithPreserveNewLines(false).
		WithTableWrap(false).
		WithInlineTableLinks(true)

	assert.Equal(t, Options{Width: 100, Style: "light", InlineTableLinks: true}, opts)
	assert.Equal(t, DefaultOptions(), base, "builders return copies")
}

func TestMarkdown_Reply(t *testing.T) {
	out, err := Markdown(sampleReply, DefaultOptions())
	require.NoError(t, err)

	// words are checked one by one since ANSI codes sit between them
	for _, want := range []string{"Reading", "ReadFile", "notes.txt", "Approach", "bufio.Scanner", "close"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "**os.ReadFile**")
	assert.NotContains(t, out, "```")
}

func TestMarkdown_Widths(t *testing.T) {
	long := strings.Repeat("goroutines are cheap ", 12)

	narrow, err := MarkdownWithWidth(long, 30)
	require.NoError(t, err)
	wide, err := MarkdownWithWidth(long, 120)
	require.NoError(t, err)

	assert.Greater(t, strings.Count(narrow, "\n"), strings.Count(wide, "\n"))
}

func TestMarkdown_Emoji(t *testing.T) {
	on, err := Markdown("done :rocket:", DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, on, ":rocket:")

	off, err := Markdown("done :rocket:", DefaultOptions().WithEmoji(false))
	require.NoError(t, err)
	assert.Contains(t, off, ":rocket:")
}

func TestMarkdown_ErrorText(t *testing.T) {
	out, err := MarkdownWithWidth("Error: Could not get a response. request timed out", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Could")
	assert.Contains(t, out, "timed")
}

func TestMarkdown_MissingStyleFile(t *testing.T) {
	_, err := Markdown("# Test", DefaultOptions().WithStyle("/no/such/style.json"))
	assert.Error(t, err)
}

func BenchmarkMarkdown(b *testing.B) {
	opts := DefaultOptions()
	if _, err := Markdown(sampleReply, opts); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Markdown(sampleReply, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarkdownParallel(b *testing.B) {
	opts := DefaultOptions()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := Markdown(sampleReply, opts); err != nil {
				b.Fatal(err)
			}
		}
	})
}
