// Package app ties the persistence store, conversation model, command
// interpreter and gateway together and dispatches remote requests.
//
// An App is owned by one goroutine. Remote calls run on worker goroutines
// that never touch App state; their results come back on Results() and the
// owner applies them with Apply.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/command"
	"github.com/tigosprojects/tigos/internal/config"
	"github.com/tigosprojects/tigos/internal/conversation"
	apierrors "github.com/tigosprojects/tigos/internal/errors"
	"github.com/tigosprojects/tigos/internal/history"
	"github.com/tigosprojects/tigos/internal/models"
	"github.com/tigosprojects/tigos/internal/speech"
)

// resultBuffer is the capacity of the results channel
const resultBuffer = 16

// Selection is the set of provider choices applied to new requests
type Selection struct {
	ChatModel  models.ChatModel
	ImageModel models.ImageModel
	Resolution models.Resolution
	NoLogo     bool
	Voice      models.Voice
}

// DefaultSelection returns the first entry of every menu
func DefaultSelection() Selection {
	return Selection{
		ChatModel:  models.DefaultChatModel,
		ImageModel: models.DefaultImageModel,
		Resolution: models.DefaultResolution,
		Voice:      models.DefaultVoice,
	}
}

// SelectionFromConfig parses the configured defaults
func SelectionFromConfig(d config.DefaultsConfig) (Selection, error) {
	chat, err := models.ParseChatModel(d.ChatModel)
	if err != nil {
		return Selection{}, err
	}
	img, err := models.ParseImageModel(d.ImageModel)
	if err != nil {
		return Selection{}, err
	}
	res, err := models.ParseResolution(d.Resolution)
	if err != nil {
		return Selection{}, err
	}
	voice, err := models.ParseVoice(d.Voice)
	if err != nil {
		return Selection{}, err
	}
	return Selection{ChatModel: chat, ImageModel: img, Resolution: res, NoLogo: d.NoLogo, Voice: voice}, nil
}

// Task is a dispatched request. Its fields never change after Submit.
type Task struct {
	ID        string
	ThreadID  string
	Request   command.Request
	Selection Selection
	Started   time.Time
}

// Outcome is the result of a task
type Outcome struct {
	Task    *Task
	Text    string
	Image   []byte
	Audio   []byte
	Err     error
	Elapsed time.Duration
}

// Option configures an App
type Option func(*App)

// WithLogger sets the application logger
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithIDGenerator replaces the thread id generator
func WithIDGenerator(newID func() string) Option {
	return func(a *App) {
		a.newID = newID
	}
}

// WithSelection overrides the initial selection
func WithSelection(sel Selection) Option {
	return func(a *App) {
		a.sel = sel
		a.selSet = true
	}
}

// App is the application state
type App struct {
	store    *history.Store
	settings history.Settings
	conv     *conversation.Model
	images   []history.ImageRecord
	tts      []string

	gw       api.Gateway
	narrator speech.Narrator
	sel      Selection
	selSet   bool
	log      zerolog.Logger
	newID    func() string

	results  chan Outcome
	inFlight atomic.Int32

	lastMedia     []byte
	lastMediaKind command.Kind
}

// Open loads every collection from the configured data directory. A corrupt
// collection file is returned as an error and the App is not created.
func Open(cfg config.Config, gw api.Gateway, narrator speech.Narrator, opts ...Option) (*App, error) {
	dir, err := config.GetDataDir(cfg)
	if err != nil {
		return nil, err
	}
	store, err := history.NewStoreWithFiles(dir, cfg.Files)
	if err != nil {
		return nil, err
	}

	a := &App{
		store:    store,
		gw:       gw,
		narrator: narrator,
		log:      zerolog.Nop(),
		results:  make(chan Outcome, resultBuffer),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.narrator == nil {
		a.narrator = speech.NopNarrator{}
	}
	if !a.selSet {
		if a.sel, err = SelectionFromConfig(cfg.Defaults); err != nil {
			return nil, err
		}
	}

	snap, err := store.LoadAll()
	if err != nil {
		return nil, err
	}
	a.settings = snap.Settings
	a.images = snap.Images
	a.tts = snap.TTS

	a.conv, err = conversation.New(store.Chats(), snap.Chats, a.newID)
	if err != nil {
		return nil, err
	}

	a.log.Info().
		Str("data_dir", dir).
		Int("threads", len(a.conv.Threads())).
		Int("images", len(a.images)).
		Int("tts", len(a.tts)).
		Msg("state loaded")

	return a, nil
}

// Conversation returns the conversation model
func (a *App) Conversation() *conversation.Model {
	return a.conv
}

// Store returns the persistence store
func (a *App) Store() *history.Store {
	return a.store
}

// Selection returns the current provider choices
func (a *App) Selection() Selection {
	return a.sel
}

// SetSelection changes the provider choices for future requests
func (a *App) SetSelection(sel Selection) {
	a.sel = sel
}

// Results delivers task outcomes to the owner goroutine
func (a *App) Results() <-chan Outcome {
	return a.results
}

// InFlight returns the number of dispatched tasks not yet finished
func (a *App) InFlight() int {
	return int(a.inFlight.Load())
}

// Submit classifies input, records the user message in the current thread
// and starts the remote call on its own goroutine. Empty input is a no-op
// and reports false.
func (a *App) Submit(ctx context.Context, input string) (*Task, bool, error) {
	req, ok := command.Classify(input)
	if !ok {
		return nil, false, nil
	}

	threadID := a.conv.CurrentThread()
	if err := a.conv.AppendMessage(threadID, conversation.UserMessage(command.Echo(req))); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, false, err
		}
		a.log.Error().Err(err).Msg("failed to persist user message")
	}

	task := &Task{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		Request:   req,
		Selection: a.sel,
		Started:   time.Now(),
	}

	a.log.Info().
		Str("task", task.ID).
		Str("thread", threadID).
		Stringer("kind", req.Kind).
		Msg("dispatch")

	a.inFlight.Add(1)
	go a.run(context.WithoutCancel(ctx), task)

	return task, true, nil
}

// run executes task on a worker goroutine and reports its outcome
func (a *App) run(ctx context.Context, task *Task) {
	out := Outcome{Task: task}
	switch task.Request.Kind {
	case command.KindImage:
		out.Image, out.Err = a.gw.GenerateImage(ctx, api.ImageRequest{
			Prompt:     task.Request.Text,
			Model:      task.Selection.ImageModel,
			Resolution: task.Selection.Resolution,
			NoLogo:     task.Selection.NoLogo,
		})
	case command.KindTTS:
		out.Audio, out.Err = a.gw.Synthesize(ctx, api.SpeechRequest{
			Text:  task.Request.Text,
			Voice: task.Selection.Voice,
		})
	default:
		out.Text, out.Err = a.gw.Chat(ctx, api.ChatRequest{
			Text:  task.Request.Text,
			Model: task.Selection.ChatModel,
		})
	}
	out.Elapsed = time.Since(task.Started)

	a.inFlight.Add(-1)
	a.results <- out
}

// Wait blocks for the next outcome
func (a *App) Wait(ctx context.Context) (Outcome, error) {
	select {
	case out := <-a.results:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Apply appends exactly one assistant message for outcome to the thread the
// task came from, and records image and speech history on success.
// Only the owner goroutine may call Apply.
func (a *App) Apply(out Outcome) (conversation.Message, error) {
	task := out.Task
	evt := a.log.Info()
	if out.Err != nil {
		evt = a.log.Warn().Err(out.Err)
	}
	evt.Str("task", task.ID).Dur("elapsed", out.Elapsed).Msg("outcome")

	msg := a.messageFor(out)
	err := a.conv.AppendMessage(task.ThreadID, msg)

	if out.Err == nil {
		switch task.Request.Kind {
		case command.KindImage:
			a.lastMedia, a.lastMediaKind = out.Image, command.KindImage
			if herr := a.recordImage(task.Request.Text, task.Selection); herr != nil && err == nil {
				err = herr
			}
		case command.KindTTS:
			a.lastMedia, a.lastMediaKind = out.Audio, command.KindTTS
			if herr := a.recordTTS(task.Request.Text); herr != nil && err == nil {
				err = herr
			}
		}
	}

	return msg, err
}

func (a *App) messageFor(out Outcome) conversation.Message {
	if out.Err != nil {
		return conversation.AssistantMessage(ErrorText(out.Err))
	}
	switch out.Task.Request.Kind {
	case command.KindImage:
		return conversation.Message{
			Role:  conversation.RoleAssistant,
			Text:  "Generated image: " + out.Task.Request.Text,
			Image: out.Image,
		}
	case command.KindTTS:
		return conversation.AssistantMessage(fmt.Sprintf("Audio ready (%d bytes). Use /save <path> to keep it.", len(out.Audio)))
	default:
		return conversation.AssistantMessage(out.Text)
	}
}

// ErrorText is the conversation message shown for a failed request
func ErrorText(err error) string {
	return "Error: Could not get a response. " + err.Error()
}

func (a *App) recordImage(prompt string, sel Selection) error {
	a.images = append(a.images, history.ImageRecord{
		Prompt:     prompt,
		Model:      string(sel.ImageModel),
		Resolution: sel.Resolution.String(),
		NoLogo:     sel.NoLogo,
	})
	return a.store.Images().Save(a.images)
}

func (a *App) recordTTS(text string) error {
	a.tts = append(a.tts, text)
	return a.store.TTS().Save(a.tts)
}

// LastMedia returns the most recent image or audio payload produced in chat
func (a *App) LastMedia() ([]byte, command.Kind, bool) {
	if a.lastMedia == nil {
		return nil, command.KindChat, false
	}
	return a.lastMedia, a.lastMediaKind, true
}

// SaveLastMedia writes the most recent image or audio payload to path
func (a *App) SaveLastMedia(path string) (string, error) {
	data, kind, ok := a.LastMedia()
	if !ok {
		return "", fmt.Errorf("nothing to save yet")
	}
	if kind == command.KindImage {
		return api.SaveImage(data, path)
	}
	return api.SaveAudio(data, path)
}

// LastReply returns the text of the newest assistant message in the current thread
func (a *App) LastReply() string {
	th, err := a.conv.Thread(a.conv.CurrentThread())
	if err != nil {
		return ""
	}
	for i := len(th.Messages) - 1; i >= 0; i-- {
		if th.Messages[i].Role == conversation.RoleAssistant {
			return th.Messages[i].Text
		}
	}
	return ""
}

// Settings returns a copy of the user settings
func (a *App) Settings() history.Settings {
	s := a.settings
	if s.ProfilePic != nil {
		pic := *s.ProfilePic
		s.ProfilePic = &pic
	}
	return s
}

// UpdateSettings applies fn to the settings and persists them
func (a *App) UpdateSettings(fn func(*history.Settings)) error {
	s := a.Settings()
	fn(&s)
	if s.Username == "" {
		return apierrors.NewValidationError("username", "", "must not be empty")
	}
	a.settings = s
	return a.store.Settings().Save(a.settings)
}

// ImageHistory returns a copy of the image generation history
func (a *App) ImageHistory() []history.ImageRecord {
	return append([]history.ImageRecord(nil), a.images...)
}

// TTSHistory returns a copy of the speech history
func (a *App) TTSHistory() []string {
	return append([]string(nil), a.tts...)
}

// Preview records text in the speech history and reads it aloud with the
// local engine. Narration runs in the background; its result is sent on the
// returned channel.
func (a *App) Preview(ctx context.Context, text string) (<-chan error, error) {
	if text == "" {
		return nil, apierrors.ErrEmptyInput
	}
	if err := a.recordTTS(text); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	narrator := a.narrator
	log := a.log
	go func() {
		err := narrator.Speak(context.WithoutCancel(ctx), text)
		if err != nil {
			log.Warn().Err(err).Msg("offline narration failed")
		}
		done <- err
	}()
	return done, nil
}

// GenerateImage renders prompt with the current selection in the calling
// goroutine and records it in the image history on success.
func (a *App) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if prompt == "" {
		return nil, apierrors.ErrEmptyInput
	}
	sel := a.sel
	data, err := a.gw.GenerateImage(ctx, api.ImageRequest{
		Prompt:     prompt,
		Model:      sel.ImageModel,
		Resolution: sel.Resolution,
		NoLogo:     sel.NoLogo,
	})
	if err != nil {
		return nil, err
	}
	a.lastMedia, a.lastMediaKind = data, command.KindImage
	return data, a.recordImage(prompt, sel)
}

// DownloadSpeech synthesizes text with the current voice, writes it to path
// and records it in the speech history.
func (a *App) DownloadSpeech(ctx context.Context, text, path string) (string, error) {
	if text == "" {
		return "", apierrors.ErrEmptyInput
	}
	written, err := api.DownloadSpeech(ctx, a.gw, api.SpeechRequest{Text: text, Voice: a.sel.Voice}, path)
	if err != nil {
		return "", err
	}
	return written, a.recordTTS(text)
}

// Close writes every collection. Outcomes still in flight are abandoned.
func (a *App) Close() error {
	if n := a.InFlight(); n > 0 {
		a.log.Warn().Int("tasks", n).Msg("closing with tasks in flight")
	}
	return a.store.SaveAll(history.Snapshot{
		Settings: a.settings,
		Chats:    a.conv.Snapshot(),
		Images:   a.images,
		TTS:      a.tts,
	})
}
