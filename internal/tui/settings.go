package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tigosprojects/tigos/internal/app"
	"github.com/tigosprojects/tigos/internal/history"
	"github.com/tigosprojects/tigos/internal/models"
	"github.com/tigosprojects/tigos/internal/render"
)

type settingsField int

const (
	fieldUsername settingsField = iota
	fieldProfilePic
	fieldTheme
	fieldChatModel
	fieldImageModel
	fieldResolution
	fieldVoice
	fieldNoLogo
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldUsername:   "Username",
	fieldProfilePic: "Profile picture",
	fieldTheme:      "Theme",
	fieldChatModel:  "Chat model",
	fieldImageModel: "Image model",
	fieldResolution: "Resolution",
	fieldVoice:      "Voice",
	fieldNoLogo:     "No logo",
}

type settingsAction int

const (
	actionNone settingsAction = iota
	actionSave
	actionCancel
)

// settingsForm edits the user settings and the request selection
type settingsForm struct {
	username   textinput.Model
	profilePic textinput.Model

	theme      int
	chatModel  int
	imageModel int
	resolution int
	voice      int
	noLogo     bool

	cursor settingsField
	err    error
}

func newSettingsForm(s history.Settings, sel app.Selection, theme render.Theme) settingsForm {
	username := textinput.New()
	username.Prompt = ""
	username.CharLimit = 64
	username.SetValue(s.Username)
	username.Focus()

	pic := textinput.New()
	pic.Prompt = ""
	pic.Placeholder = "path to an image (optional)"
	if s.ProfilePic != nil {
		pic.SetValue(*s.ProfilePic)
	}

	return settingsForm{
		username:   username,
		profilePic: pic,
		theme:      indexOf(render.Themes(), theme),
		chatModel:  indexOf(models.AllChatModels(), sel.ChatModel),
		imageModel: indexOf(models.AllImageModels(), sel.ImageModel),
		resolution: indexOf(models.AllResolutions(), sel.Resolution),
		voice:      indexOf(models.AllVoices(), sel.Voice),
		noLogo:     sel.NoLogo,
	}
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return 0
}

func cycle(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

func (f settingsForm) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (f settingsForm) update(key tea.KeyMsg) (settingsForm, settingsAction, tea.Cmd) {
	switch key.String() {
	case "esc":
		return f, actionCancel, nil
	case "enter":
		return f, actionSave, nil
	case "up", "shift+tab":
		f.moveCursor(-1)
		return f, actionNone, nil
	case "down", "tab":
		f.moveCursor(1)
		return f, actionNone, nil
	case "left":
		if f.adjust(-1) {
			return f, actionNone, nil
		}
	case "right", " ":
		if f.adjust(1) {
			return f, actionNone, nil
		}
	}

	var cmd tea.Cmd
	switch f.cursor {
	case fieldUsername:
		f.username, cmd = f.username.Update(key)
	case fieldProfilePic:
		f.profilePic, cmd = f.profilePic.Update(key)
	}
	return f, actionNone, cmd
}

// updateInputs forwards non-key messages such as cursor blinks
func (f settingsForm) updateInputs(msg tea.Msg) (settingsForm, tea.Cmd) {
	var c1, c2 tea.Cmd
	f.username, c1 = f.username.Update(msg)
	f.profilePic, c2 = f.profilePic.Update(msg)
	return f, tea.Batch(c1, c2)
}

func (f *settingsForm) moveCursor(delta int) {
	f.cursor = settingsField(cycle(int(f.cursor), delta, int(fieldCount)))
	f.username.Blur()
	f.profilePic.Blur()
	switch f.cursor {
	case fieldUsername:
		f.username.Focus()
	case fieldProfilePic:
		f.profilePic.Focus()
	}
}

// adjust cycles the choice under the cursor; false for text fields
func (f *settingsForm) adjust(delta int) bool {
	switch f.cursor {
	case fieldTheme:
		f.theme = cycle(f.theme, delta, len(render.Themes()))
	case fieldChatModel:
		f.chatModel = cycle(f.chatModel, delta, len(models.AllChatModels()))
	case fieldImageModel:
		f.imageModel = cycle(f.imageModel, delta, len(models.AllImageModels()))
	case fieldResolution:
		f.resolution = cycle(f.resolution, delta, len(models.AllResolutions()))
	case fieldVoice:
		f.voice = cycle(f.voice, delta, len(models.AllVoices()))
	case fieldNoLogo:
		f.noLogo = !f.noLogo
	default:
		return false
	}
	return true
}

// values returns the edits to persist
func (f settingsForm) values() (func(*history.Settings), app.Selection, render.Theme) {
	theme := render.Themes()[f.theme]
	username := strings.TrimSpace(f.username.Value())
	pic := strings.TrimSpace(f.profilePic.Value())

	edit := func(s *history.Settings) {
		s.Username = username
		s.Theme = string(theme)
		if pic == "" {
			s.ProfilePic = nil
		} else {
			s.ProfilePic = &pic
		}
	}
	sel := app.Selection{
		ChatModel:  models.AllChatModels()[f.chatModel],
		ImageModel: models.AllImageModels()[f.imageModel],
		Resolution: models.AllResolutions()[f.resolution],
		Voice:      models.AllVoices()[f.voice],
		NoLogo:     f.noLogo,
	}
	return edit, sel, theme
}

func (f settingsForm) fieldValue(field settingsField) string {
	switch field {
	case fieldUsername:
		return f.username.View()
	case fieldProfilePic:
		return f.profilePic.View()
	case fieldTheme:
		return "‹ " + string(render.Themes()[f.theme]) + " ›"
	case fieldChatModel:
		return "‹ " + string(models.AllChatModels()[f.chatModel]) + " ›"
	case fieldImageModel:
		return "‹ " + string(models.AllImageModels()[f.imageModel]) + " ›"
	case fieldResolution:
		return "‹ " + models.AllResolutions()[f.resolution].String() + " ›"
	case fieldVoice:
		return "‹ " + string(models.AllVoices()[f.voice]) + " ›"
	case fieldNoLogo:
		if f.noLogo {
			return enabledStyle.Render("● on")
		}
		return disabledStyle.Render("○ off")
	}
	return ""
}

func (f settingsForm) view(width int) string {
	width -= 8
	if width < 40 {
		width = 40
	}

	var content strings.Builder
	content.WriteString(panelTitleStyle.Render("Settings"))
	content.WriteString("\n")

	for field := settingsField(0); field < fieldCount; field++ {
		cursor := "  "
		labelStyle := menuItemStyle
		if field == f.cursor {
			cursor = menuCursorStyle.Render("▸ ")
			labelStyle = menuSelectedStyle
		}
		label := labelStyle.Render(fmt.Sprintf("%-16s", fieldLabels[field]))
		content.WriteString(cursor + label + " " + valueStyle.Render(f.fieldValue(field)))
		content.WriteString("\n")
	}

	if f.err != nil {
		content.WriteString("\n")
		content.WriteString(errorStyle.Render("✗ " + f.err.Error()))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(strings.Join([]string{
		shortcut("↑↓", "Field"),
		shortcut("←→", "Change"),
		shortcut("Enter", "Save"),
		shortcut("Esc", "Cancel"),
	}, "  │  "))

	return panelStyle.Width(width).Render(content.String())
}
