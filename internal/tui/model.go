package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/app"
	"github.com/tigosprojects/tigos/internal/command"
	"github.com/tigosprojects/tigos/internal/conversation"
	"github.com/tigosprojects/tigos/internal/history"
	"github.com/tigosprojects/tigos/internal/render"
)

// sidebarWidth is the thread list width; the sidebar hides below minSidebarTerm columns
const (
	sidebarWidth   = 30
	minSidebarTerm = 80
)

const helpText = "/new  /switch [ref]  /save [path]  /copy  /exit  ·  generate an image <prompt>  ·  /tts <text>"

// Session is the application surface the TUI drives. *app.App implements it.
type Session interface {
	Conversation() *conversation.Model
	Submit(ctx context.Context, input string) (*app.Task, bool, error)
	Results() <-chan app.Outcome
	Apply(out app.Outcome) (conversation.Message, error)
	InFlight() int
	Settings() history.Settings
	UpdateSettings(fn func(*history.Settings)) error
	Selection() app.Selection
	SetSelection(sel app.Selection)
	SaveLastMedia(path string) (string, error)
	LastReply() string
	Close() error
}

var _ Session = (*app.App)(nil)

type screen int

const (
	screenChat screen = iota
	screenPicker
	screenSettings
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// outcomeMsg carries a finished task back to Update
type outcomeMsg struct {
	out app.Outcome
}

// waitForOutcome blocks on the results channel outside the update loop
func waitForOutcome(results <-chan app.Outcome) tea.Cmd {
	return func() tea.Msg {
		out, ok := <-results
		if !ok {
			return nil
		}
		return outcomeMsg{out: out}
	}
}

// Option configures the chat model
type Option func(*Model)

// WithContext sets the context passed to Submit
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// WithDownloadDir sets where /save writes when no path is given
func WithDownloadDir(dir string) Option {
	return func(m *Model) {
		m.downloadDir = dir
	}
}

// WithClipboard replaces the clipboard writer used by /copy
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copyText = write
	}
}

// Model represents the TUI state
type Model struct {
	sess        Session
	ctx         context.Context
	downloadDir string
	copyText    func(string) error
	now         func() time.Time

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	picker   threadPicker
	settings settingsForm

	// State
	screen        screen
	focus         focusArea
	sidebarCursor int
	spinning      bool
	theme         render.Theme
	mdOpts        render.Options
	notice        string
	err           error

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewModel creates the chat model for sess
func NewModel(sess Session, opts ...Option) Model {
	theme, err := render.ParseTheme(sess.Settings().Theme)
	if err != nil {
		theme = render.DefaultTheme
	}
	ApplyTheme(theme)

	ta := textarea.New()
	ta.Placeholder = "Message, \"generate an image ...\" or /tts ..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Points

	m := Model{
		sess:     sess,
		ctx:      context.Background(),
		copyText: clipboard.WriteAll,
		now:      time.Now,
		textarea: ta,
		spinner:  s,
		theme:    theme,
		mdOpts:   render.OptionsForTheme(theme, 80),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.restyle()
	m.sidebarCursor = m.currentIndex()
	return m
}

// Init starts listening for task outcomes
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		waitForOutcome(m.sess.Results()),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case outcomeMsg:
		return m.applyOutcome(msg.out)

	case spinner.TickMsg:
		if m.sess.InFlight() == 0 {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.screen {
		case screenPicker:
			return m.updatePicker(msg)
		case screenSettings:
			return m.updateSettings(msg)
		}
		return m.updateChat(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.screen == screenSettings {
		m.settings, cmd = m.settings.updateInputs(msg)
		cmds = append(cmds, cmd)
	}
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) updateChat(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+n":
		m.newThread()
		return m, nil
	case "ctrl+t":
		m.openPicker()
		return m, nil
	case "ctrl+s":
		return m.openSettings()
	case "tab":
		m.toggleFocus()
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m.updateSidebar(key)
	}
	if key.Type == tea.KeyEnter {
		return m.submit()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(key)
	return m, cmd
}

func (m Model) updateSidebar(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	threads := m.sess.Conversation().Threads()
	switch key.String() {
	case "up", "k":
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
	case "down", "j":
		if m.sidebarCursor < len(threads)-1 {
			m.sidebarCursor++
		}
	case "enter":
		if m.sidebarCursor < len(threads) {
			m.switchThread(threads[m.sidebarCursor].ID)
			m.toggleFocus()
		}
	}
	return m, nil
}

// submit sends the input box contents to the session or runs a slash command
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}
	m.textarea.Reset()
	m.notice, m.err = "", nil

	if slash, ok := command.ParseSlash(input); ok {
		return m.runSlash(slash)
	}

	_, ok, err := m.sess.Submit(m.ctx, input)
	if err != nil {
		m.err = err
		return m, nil
	}
	if !ok {
		return m, nil
	}
	m.refresh()
	m.viewport.GotoBottom()
	return m, m.startSpinner()
}

func (m Model) runSlash(s command.Slash) (tea.Model, tea.Cmd) {
	switch s.Name {
	case "new":
		m.newThread()

	case "switch":
		if s.Arg == "" {
			m.openPicker()
			break
		}
		id, err := history.NewResolver(m.sess.Conversation().Snapshot()).Resolve(s.Arg)
		if err != nil {
			m.err = err
			break
		}
		m.switchThread(id)

	case "save":
		path := s.Arg
		if path == "" {
			path = filepath.Join(m.downloadDir, api.SuggestFilename("tigos", m.now()))
		}
		written, err := m.sess.SaveLastMedia(path)
		if err != nil {
			m.err = err
			break
		}
		m.notice = "Saved to " + written

	case "copy":
		reply := m.sess.LastReply()
		if reply == "" {
			m.notice = "Nothing to copy yet"
			break
		}
		if err := m.copyText(reply); err != nil {
			m.err = fmt.Errorf("copy to clipboard: %w", err)
			break
		}
		m.notice = "Copied last reply to clipboard"

	case "exit", "quit":
		return m, tea.Quit

	case "help":
		m.notice = helpText
	}
	return m, nil
}

// applyOutcome appends a finished task to its thread and re-arms the listener
func (m Model) applyOutcome(out app.Outcome) (tea.Model, tea.Cmd) {
	if _, err := m.sess.Apply(out); err != nil {
		m.err = err
	}

	conv := m.sess.Conversation()
	if out.Task.ThreadID == conv.CurrentThread() {
		m.refresh()
		m.viewport.GotoBottom()
	} else {
		for _, t := range conv.Threads() {
			if t.ID == out.Task.ThreadID {
				m.notice = fmt.Sprintf("Reply arrived in %q", t.Title)
			}
		}
	}
	return m, waitForOutcome(m.sess.Results())
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) newThread() {
	if _, err := m.sess.Conversation().CreateThread(); err != nil {
		m.err = err
	}
	m.sidebarCursor = m.currentIndex()
	m.notice = "New chat started"
	m.refresh()
}

func (m *Model) switchThread(id string) {
	if err := m.sess.Conversation().SwitchThread(id); err != nil {
		m.err = err
		return
	}
	m.sidebarCursor = m.currentIndex()
	m.refresh()
	m.viewport.GotoBottom()
}

func (m *Model) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusSidebar
		m.sidebarCursor = m.currentIndex()
		m.textarea.Blur()
		return
	}
	m.focus = focusInput
	m.textarea.Focus()
}

func (m *Model) openPicker() {
	m.picker = newThreadPicker(m.sess.Conversation().Threads())
	m.screen = screenPicker
}

func (m Model) updatePicker(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}
	var res pickerResult
	m.picker, res = m.picker.update(key)
	if res.done {
		m.screen = screenChat
		if res.id != "" {
			m.switchThread(res.id)
		}
	}
	return m, nil
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.settings = newSettingsForm(m.sess.Settings(), m.sess.Selection(), m.theme)
	m.screen = screenSettings
	return m, m.settings.focusCmd()
}

func (m Model) updateSettings(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}
	var (
		action settingsAction
		cmd    tea.Cmd
	)
	m.settings, action, cmd = m.settings.update(key)
	switch action {
	case actionCancel:
		m.screen = screenChat
	case actionSave:
		edit, sel, theme := m.settings.values()
		if err := m.sess.UpdateSettings(edit); err != nil {
			m.settings.err = err
			return m, nil
		}
		m.sess.SetSelection(sel)
		m.setTheme(theme)
		m.screen = screenChat
		m.notice = "Settings saved"
		m.refresh()
	}
	return m, cmd
}

func (m *Model) setTheme(theme render.Theme) {
	ApplyTheme(theme)
	m.theme = theme
	m.mdOpts = render.OptionsForTheme(theme, m.viewport.Width)
	m.restyle()
}

// restyle pushes the palette into the bubbles components
func (m *Model) restyle() {
	m.textarea.FocusedStyle.CursorLine = lipgloss.NewStyle()
	m.textarea.FocusedStyle.Base = lipgloss.NewStyle().Foreground(palette.Text)
	m.textarea.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(palette.TextDim)
	m.textarea.BlurredStyle = m.textarea.FocusedStyle
	m.spinner.Style = loadingStyle
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 5
	statusHeight := 2
	vpHeight := height - headerHeight - inputHeight - statusHeight - 2
	if vpHeight < 3 {
		vpHeight = 3
	}

	vpWidth := width - 4
	if m.showSidebar() {
		vpWidth -= sidebarWidth + 2
	}
	if vpWidth < 20 {
		vpWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(width - 4)
	m.mdOpts = m.mdOpts.WithWidth(vpWidth - 10)
	m.refresh()
	m.viewport.GotoBottom()
}

func (m Model) showSidebar() bool {
	return m.width >= minSidebarTerm
}

func (m Model) currentIndex() int {
	conv := m.sess.Conversation()
	for i, t := range conv.Threads() {
		if t.ID == conv.CurrentThread() {
			return i
		}
	}
	return 0
}

// refresh re-renders the current thread into the viewport
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
}

func (m Model) renderMessages() string {
	conv := m.sess.Conversation()
	th, err := conv.Thread(conv.CurrentThread())
	if err != nil || len(th.Messages) == 0 {
		return hintStyle.Render("Start a conversation by typing a message below. /help lists commands.")
	}

	username := m.sess.Settings().Username
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	var content strings.Builder
	for i, msg := range th.Messages {
		if i > 0 {
			content.WriteString("\n")
		}
		if msg.Role == conversation.RoleUser {
			content.WriteString(userLabelStyle.Render("● " + username))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))
		} else {
			content.WriteString(assistantLabelStyle.Render("✦ Tigos"))
			content.WriteString("\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.renderReply(msg, bubbleWidth-4)))
		}
		content.WriteString("\n")
	}
	return content.String()
}

func (m Model) renderReply(msg conversation.Message, width int) string {
	if msg.Image != nil {
		note := fmt.Sprintf("[%s image, %d KB] /save <path> to keep it",
			strings.TrimPrefix(api.ImageExtension(msg.Image), "."), (len(msg.Image)+1023)/1024)
		return msg.Text + "\n" + mediaStyle.Render(note)
	}
	if strings.HasPrefix(msg.Text, "Error:") {
		return errorStyle.Render(msg.Text)
	}
	rendered, err := render.Markdown(msg.Text, m.mdOpts.WithWidth(width))
	if err != nil {
		return msg.Text
	}
	return strings.TrimRight(rendered, "\n")
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	switch m.screen {
	case screenPicker:
		return m.picker.view(m.width)
	case screenSettings:
		return m.settings.view(m.width)
	}

	contentWidth := m.width - 2

	messages := messagesAreaStyle.
		Width(m.viewport.Width + 2).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	body := messages
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), messages)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(contentWidth),
		body,
		m.renderInput(contentWidth),
		m.renderStatusBar(contentWidth),
	)
}

func (m Model) renderHeader(width int) string {
	sel := m.sess.Selection()
	parts := []string{
		titleStyle.Render("✦ Tigos"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(fmt.Sprintf("chat %s", sel.ChatModel)),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(fmt.Sprintf("image %s %s", sel.ImageModel, sel.Resolution)),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(fmt.Sprintf("voice %s", sel.Voice)),
	}
	return headerStyle.Width(width - 2).Render(lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

func (m Model) renderSidebar() string {
	style := sidebarStyle
	if m.focus == focusSidebar {
		style = sidebarFocusedStyle
	}

	var lines []string
	lines = append(lines, titleStyle.Render("Chats"), "")
	for i, t := range m.sess.Conversation().Threads() {
		cursor := "  "
		if m.focus == focusSidebar && i == m.sidebarCursor {
			cursor = threadCursorStyle.Render("▸ ")
		}
		label := history.Truncate(t.Title, sidebarWidth-6)
		if t.Current {
			lines = append(lines, cursor+threadCurrentStyle.Render(label))
		} else {
			lines = append(lines, cursor+threadItemStyle.Render(label))
		}
	}

	return style.Width(sidebarWidth).Height(m.viewport.Height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderInput(width int) string {
	label := inputLabelStyle.Render(m.sess.Settings().Username)
	if n := m.sess.InFlight(); n > 0 {
		label += "  " + m.spinner.View() + loadingStyle.Render(fmt.Sprintf(" %d waiting", n))
	}

	style := inputPanelStyle
	if m.focus != focusInput {
		style = inputPanelBlurredStyle
	}
	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View()))
}

func (m Model) renderStatusBar(width int) string {
	var line string
	switch {
	case m.err != nil:
		line = errorStyle.Render("✗ " + m.err.Error())
	case m.notice != "":
		line = noticeStyle.Render(m.notice)
	}

	shortcuts := strings.Join([]string{
		shortcut("Enter", "Send"),
		shortcut("^N", "New"),
		shortcut("^T", "Threads"),
		shortcut("^S", "Settings"),
		shortcut("Tab", "Focus"),
		shortcut("Esc", "Quit"),
	}, "  │  ")

	return statusBarStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, line, shortcuts))
}

// Run starts the chat TUI and writes every collection when it exits
func Run(sess Session, opts ...Option) error {
	p := tea.NewProgram(NewModel(sess, opts...), tea.WithAltScreen())
	_, err := p.Run()
	if cerr := sess.Close(); err == nil {
		err = cerr
	}
	return err
}
