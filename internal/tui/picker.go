package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tigosprojects/tigos/internal/conversation"
	"github.com/tigosprojects/tigos/internal/history"
)

// pickerVisible is the number of rows shown at once
const pickerVisible = 10

// pickerResult reports how the picker closed. An empty id means cancelled.
type pickerResult struct {
	done bool
	id   string
}

// threadPicker is the filterable thread list opened with Ctrl+T
type threadPicker struct {
	threads []conversation.ThreadSummary
	filter  string
	cursor  int
}

func newThreadPicker(threads []conversation.ThreadSummary) threadPicker {
	p := threadPicker{threads: threads}
	for i, t := range threads {
		if t.Current {
			p.cursor = i
		}
	}
	return p
}

// filtered returns the threads whose title or id contains the filter
func (p threadPicker) filtered() []conversation.ThreadSummary {
	if p.filter == "" {
		return p.threads
	}
	needle := strings.ToLower(p.filter)
	var out []conversation.ThreadSummary
	for _, t := range p.threads {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.HasPrefix(strings.ToLower(t.ID), needle) {
			out = append(out, t)
		}
	}
	return out
}

func (p threadPicker) update(key tea.KeyMsg) (threadPicker, pickerResult) {
	items := p.filtered()

	switch key.Type {
	case tea.KeyEsc:
		return p, pickerResult{done: true}

	case tea.KeyEnter:
		if p.cursor < len(items) {
			return p, pickerResult{done: true, id: items[p.cursor].ID}
		}
		return p, pickerResult{}

	case tea.KeyUp:
		if len(items) > 0 {
			p.cursor--
			if p.cursor < 0 {
				p.cursor = len(items) - 1
			}
		}

	case tea.KeyDown:
		if len(items) > 0 {
			p.cursor++
			if p.cursor >= len(items) {
				p.cursor = 0
			}
		}

	case tea.KeyBackspace:
		if p.filter != "" {
			r := []rune(p.filter)
			p.filter = string(r[:len(r)-1])
			p.cursor = 0
		}

	case tea.KeyRunes, tea.KeySpace:
		p.filter += string(key.Runes)
		p.cursor = 0
	}

	return p, pickerResult{}
}

func (p threadPicker) view(width int) string {
	width -= 8
	if width < 40 {
		width = 40
	}

	var content strings.Builder
	content.WriteString(panelTitleStyle.Render("Switch chat"))
	content.WriteString("\n")

	content.WriteString(inputLabelStyle.Render("Filter: ") + p.filter + "_")
	content.WriteString("\n\n")

	items := p.filtered()
	if len(items) == 0 {
		content.WriteString(hintStyle.Render("  No chats match filter"))
		content.WriteString("\n")
	}

	start := 0
	if p.cursor >= pickerVisible {
		start = p.cursor - pickerVisible + 1
	}
	end := start + pickerVisible
	if end > len(items) {
		end = len(items)
	}

	if start > 0 {
		content.WriteString(hintStyle.Render("  ↑ more above"))
		content.WriteString("\n")
	}
	for i := start; i < end; i++ {
		t := items[i]
		cursor := "  "
		nameStyle := menuItemStyle
		if i == p.cursor {
			cursor = menuCursorStyle.Render("▸ ")
			nameStyle = menuSelectedStyle
		}
		line := cursor + nameStyle.Render(history.Truncate(t.Title, width-30))
		line += valueStyle.Render(fmt.Sprintf("  %d msgs  %s", t.Messages, shortID(t.ID)))
		if t.Current {
			line += threadCurrentStyle.Render("  (current)")
		}
		content.WriteString(line)
		content.WriteString("\n")
	}
	if end < len(items) {
		content.WriteString(hintStyle.Render("  ↓ more below"))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(strings.Join([]string{
		shortcut("↑↓", "Navigate"),
		shortcut("Enter", "Switch"),
		shortcut("Esc", "Cancel"),
	}, "  │  "))

	return panelStyle.Width(width).Render(content.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
