package history

import (
	"encoding/json"
	"fmt"
	"strings"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
)

// ExportFormat represents the format for exporting threads
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat accepts "md", "markdown" and "json"
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	}
	return "", apierrors.NewValidationError("export format", s, "expected md or json")
}

// ExportOptions configures how threads are exported
type ExportOptions struct {
	Format        ExportFormat
	Title         string // heading; defaults to the thread title
	Username      string // label for user messages; defaults to "User"
	IncludeImages bool   // inline images as data URIs
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:   ExportFormatMarkdown,
		Username: "User",
	}
}

// ExportThread renders thread id of h in the format named by opts
func ExportThread(h ChatHistory, id string, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return ExportThreadJSON(h, id)
	default:
		md, err := ExportThreadMarkdown(h, id, opts)
		if err != nil {
			return nil, err
		}
		return []byte(md), nil
	}
}

// ExportThreadMarkdown exports one thread as Markdown
func ExportThreadMarkdown(h ChatHistory, id string, opts ExportOptions) (string, error) {
	msgs, ok := h.Chats[id]
	if !ok {
		return "", apierrors.NewNotFoundError("thread", id)
	}

	title := opts.Title
	if title == "" {
		title = ThreadTitle(msgs)
	}
	username := opts.Username
	if username == "" {
		username = "User"
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString("**Thread:** ")
	sb.WriteString(id)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(msgs)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range msgs {
		role := username
		if msg.Type == TypeAI {
			role = "Tigos"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if msg.ImageData != "" {
			if opts.IncludeImages {
				sb.WriteString("\n![image](data:image/png;base64,")
				sb.WriteString(msg.ImageData)
				sb.WriteString(")\n")
			} else {
				sb.WriteString("\n*[image omitted]*\n")
			}
		}

		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String(), nil
}

// ExportThreadJSON exports one thread as JSON
func ExportThreadJSON(h ChatHistory, id string) ([]byte, error) {
	msgs, ok := h.Chats[id]
	if !ok {
		return nil, apierrors.NewNotFoundError("thread", id)
	}

	type exportThread struct {
		ID       string          `json:"id"`
		Title    string          `json:"title"`
		Messages []StoredMessage `json:"messages"`
	}

	if msgs == nil {
		msgs = []StoredMessage{}
	}
	return json.MarshalIndent(exportThread{
		ID:       id,
		Title:    ThreadTitle(msgs),
		Messages: msgs,
	}, "", "  ")
}

// ThreadTitle derives a display title from the first user message
func ThreadTitle(msgs []StoredMessage) string {
	for _, m := range msgs {
		if m.Type == TypeUser && strings.TrimSpace(m.Text) != "" {
			return Truncate(strings.TrimSpace(m.Text), 40)
		}
	}
	return "New chat"
}

// Truncate shortens s to max runes, appending "..." when cut
func Truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// SearchResult is a thread matching a search query
type SearchResult struct {
	ThreadID     string
	Title        string
	MatchSnippet string
	MatchIndex   int // message index of the match
}

// SearchThreads finds threads whose messages contain query (case-insensitive).
// At most one result is returned per thread, in thread order.
func SearchThreads(h ChatHistory, query string) []SearchResult {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return nil
	}

	var results []SearchResult
	for _, id := range h.ThreadIDs() {
		msgs := h.Chats[id]
		for i, msg := range msgs {
			if strings.Contains(strings.ToLower(msg.Text), queryLower) {
				results = append(results, SearchResult{
					ThreadID:     id,
					Title:        ThreadTitle(msgs),
					MatchSnippet: extractSnippet(msg.Text, queryLower, 80),
					MatchIndex:   i,
				})
				break
			}
		}
	}
	return results
}

// extractSnippet extracts a snippet around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	runes := []rune(content)
	lower := []rune(strings.ToLower(content))
	q := []rune(strings.ToLower(query))

	idx := indexRunes(lower, q)
	if idx == -1 || len(runes) != len(lower) {
		return Truncate(content, maxLen)
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(q) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}

func indexRunes(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
