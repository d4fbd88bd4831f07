package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/app"
	"github.com/tigosprojects/tigos/internal/config"
	"github.com/tigosprojects/tigos/internal/render"
	"github.com/tigosprojects/tigos/internal/speech"
)

type harness struct {
	t       *testing.T
	app     *app.App
	m       Model
	copied  string
	saveDir string
}

func newHarness(t *testing.T, gw api.Gateway) *harness {
	t.Helper()
	t.Setenv(config.HomeEnv, t.TempDir())
	t.Setenv(render.StyleEnv, "")

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	a, err := app.Open(cfg, gw, speech.NopNarrator{})
	require.NoError(t, err)

	h := &harness{t: t, app: a, saveDir: t.TempDir()}
	h.m = NewModel(a,
		WithClipboard(func(s string) error {
			h.copied = s
			return nil
		}),
		WithDownloadDir(h.saveDir),
	)
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	updated, cmd := h.m.Update(msg)
	h.m = updated.(Model)
	return cmd
}

func (h *harness) key(k tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: k})
}

func (h *harness) typeRunes(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// enter types input into the text box and presses Enter
func (h *harness) enter(input string) tea.Cmd {
	h.m.textarea.SetValue(input)
	return h.key(tea.KeyEnter)
}

// deliver waits for the next outcome and feeds it to Update
func (h *harness) deliver() tea.Cmd {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := h.app.Wait(ctx)
	require.NoError(h.t, err)
	return h.send(outcomeMsg{out: out})
}

func (h *harness) messages(id string) []string {
	th, err := h.app.Conversation().Thread(id)
	require.NoError(h.t, err)
	var out []string
	for _, msg := range th.Messages {
		out = append(out, msg.Text)
	}
	return out
}

func (h *harness) current() string {
	return h.app.Conversation().CurrentThread()
}

func TestSubmit_ChatRoundTrip(t *testing.T) {
	h := newHarness(t, &api.MockGateway{ChatVal: "hello back"})

	cmd := h.enter("hi there")
	assert.NotNil(t, cmd, "spinner should start while a task is in flight")
	assert.Empty(t, h.m.textarea.Value())
	assert.Equal(t, []string{"hi there"}, h.messages(h.current()))

	rearm := h.deliver()
	assert.NotNil(t, rearm, "listener must be re-armed after each outcome")
	assert.Equal(t, []string{"hi there", "hello back"}, h.messages(h.current()))
	assert.Contains(t, h.m.viewport.View(), "hello")
}

func TestSubmit_EmptyInput(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})

	cmd := h.enter("   ")
	assert.Nil(t, cmd)
	assert.Empty(t, h.messages(h.current()))
	assert.Equal(t, 0, h.app.InFlight())
}

func TestSubmit_ErrorShownInThread(t *testing.T) {
	h := newHarness(t, &api.MockGateway{ChatErr: errors.New("boom")})

	h.enter("hi")
	h.deliver()

	msgs := h.messages(h.current())
	require.Len(t, msgs, 2)
	assert.Equal(t, "Error: Could not get a response. boom", msgs[1])
}

func TestOutcome_AppliedToOriginThread(t *testing.T) {
	release := make(chan struct{})
	gw := &api.MockGateway{ChatFunc: func(ctx context.Context, req api.ChatRequest) (string, error) {
		<-release
		return "late reply", nil
	}}
	h := newHarness(t, gw)

	origin := h.current()
	h.enter("first question")
	h.key(tea.KeyCtrlN)
	require.NotEqual(t, origin, h.current())

	close(release)
	h.deliver()

	assert.Empty(t, h.messages(h.current()))
	assert.Equal(t, []string{"first question", "late reply"}, h.messages(origin))
	assert.Contains(t, h.m.notice, "Reply arrived")
}

func TestSlash_NewAndSwitch(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})
	first := h.current()

	h.enter("/new")
	assert.Len(t, h.app.Conversation().Threads(), 2)
	assert.NotEqual(t, first, h.current())

	h.enter("/switch 1")
	assert.Equal(t, first, h.current())
	assert.Nil(t, h.m.err)

	h.enter("/switch 9")
	assert.Error(t, h.m.err)
	assert.Equal(t, first, h.current())
}

func TestSlash_Copy(t *testing.T) {
	h := newHarness(t, &api.MockGateway{ChatVal: "**copy me**"})

	h.enter("/copy")
	assert.Equal(t, "Nothing to copy yet", h.m.notice)

	h.enter("hello")
	h.deliver()
	h.enter("/copy")
	assert.Equal(t, "**copy me**", h.copied)
}

func TestSlash_SaveImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")
	h := newHarness(t, &api.MockGateway{ImageVal: png})

	h.enter("generate an image of a fox")
	h.deliver()

	target := filepath.Join(h.saveDir, "fox")
	h.enter("/save " + target)
	require.Nil(t, h.m.err)
	assert.FileExists(t, target+".png")
	assert.Contains(t, h.m.notice, "Saved to")
	assert.Contains(t, h.m.viewport.View(), "png image")

	h.enter("/save")
	require.Nil(t, h.m.err)
	matches, err := filepath.Glob(filepath.Join(h.saveDir, "tigos_*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSlash_Exit(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})

	cmd := h.enter("/exit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestKeys_Quit(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})

	cmd := h.key(tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPicker_FilterAndSwitch(t *testing.T) {
	h := newHarness(t, &api.MockGateway{ChatVal: "ok"})

	alpha := h.current()
	h.enter("alpha question")
	h.deliver()
	h.key(tea.KeyCtrlN)
	h.enter("beta question")
	h.deliver()
	require.NotEqual(t, alpha, h.current())

	h.key(tea.KeyCtrlT)
	require.Equal(t, screenPicker, h.m.screen)
	assert.Contains(t, h.m.View(), "Switch chat")

	h.typeRunes("alp")
	require.Len(t, h.m.picker.filtered(), 1)
	h.key(tea.KeyEnter)

	assert.Equal(t, screenChat, h.m.screen)
	assert.Equal(t, alpha, h.current())
}

func TestPicker_Cancel(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})
	before := h.current()

	h.key(tea.KeyCtrlT)
	h.key(tea.KeyEsc)

	assert.Equal(t, screenChat, h.m.screen)
	assert.Equal(t, before, h.current())
}

func TestSidebar_TabAndSelect(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})
	first := h.current()
	h.key(tea.KeyCtrlN)

	h.key(tea.KeyTab)
	require.Equal(t, focusSidebar, h.m.focus)
	h.key(tea.KeyUp)
	h.key(tea.KeyEnter)

	assert.Equal(t, first, h.current())
	assert.Equal(t, focusInput, h.m.focus)
}

func TestSettings_Save(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})

	h.key(tea.KeyCtrlS)
	require.Equal(t, screenSettings, h.m.screen)

	h.m.settings.username.SetValue("Ana")
	h.key(tea.KeyDown) // profile picture
	h.key(tea.KeyDown) // theme
	h.key(tea.KeyRight)
	h.key(tea.KeyDown) // chat model
	h.key(tea.KeyRight)
	h.key(tea.KeyEnter)

	assert.Equal(t, screenChat, h.m.screen)
	s := h.app.Settings()
	assert.Equal(t, "Ana", s.Username)
	assert.Equal(t, "Light", s.Theme)
	assert.Nil(t, s.ProfilePic)
	assert.Equal(t, render.ThemeLight, h.m.theme)
	assert.Equal(t, render.ThemeLight, palette.Name)
	assert.Equal(t, "mistral", string(h.app.Selection().ChatModel))
	assert.Contains(t, h.m.View(), "Ana")
}

func TestSettings_EmptyUsernameRejected(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})

	h.key(tea.KeyCtrlS)
	h.m.settings.username.SetValue("   ")
	h.key(tea.KeyEnter)

	assert.Equal(t, screenSettings, h.m.screen)
	assert.Error(t, h.m.settings.err)
	assert.Equal(t, "User", h.app.Settings().Username)
	assert.Contains(t, h.m.View(), "must not be empty")
}

func TestSettings_Cancel(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})

	h.key(tea.KeyCtrlS)
	h.m.settings.username.SetValue("Zed")
	h.key(tea.KeyEsc)

	assert.Equal(t, screenChat, h.m.screen)
	assert.Equal(t, "User", h.app.Settings().Username)
}

func TestView_Layout(t *testing.T) {
	h := newHarness(t, &api.MockGateway{})

	view := h.m.View()
	assert.Contains(t, view, "Tigos")
	assert.Contains(t, view, "chat openai")
	assert.Contains(t, view, "Chats")
	assert.Contains(t, view, "New chat")

	h.send(tea.WindowSizeMsg{Width: 60, Height: 30})
	assert.NotContains(t, h.m.View(), "Chats", "sidebar hides on narrow terminals")
}

func TestView_BeforeResize(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	a, err := app.Open(cfg, &api.MockGateway{}, nil)
	require.NoError(t, err)

	assert.Contains(t, NewModel(a).View(), "Initializing")
}

func TestWaitForOutcome_ClosedChannel(t *testing.T) {
	ch := make(chan app.Outcome)
	close(ch)
	assert.Nil(t, waitForOutcome(ch)())
}

func TestFormatError(t *testing.T) {
	assert.Empty(t, FormatError(nil))
	out := FormatError(errors.New("disk full"))
	assert.True(t, strings.Contains(out, "disk full"))
}
