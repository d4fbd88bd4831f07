package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/config"
	"github.com/tigosprojects/tigos/internal/history"
	"github.com/tigosprojects/tigos/internal/speech"
	"github.com/tigosprojects/tigos/internal/tui"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// testEnv is an isolated config dir plus fake dependencies
type testEnv struct {
	home     string
	gw       *api.MockGateway
	narrator *speech.RecordingNarrator
	deps     *Dependencies
	stdin    string
	copied   []string
	tuiCalls int
	tuiSess  tui.Session
	secret   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)
	t.Setenv(config.APIKeyEnv, "")
	t.Setenv("GLAMOUR_STYLE", "")

	env := &testEnv{
		home:     home,
		gw:       &api.MockGateway{ChatVal: "Hello from the model"},
		narrator: speech.NewRecordingNarrator(4),
	}
	env.deps = &Dependencies{
		NewGateway: func(config.Config, zerolog.Logger) (api.Gateway, error) {
			return env.gw, nil
		},
		Narrator: env.narrator,
		RunTUI: func(sess tui.Session, opts ...tui.Option) error {
			env.tuiCalls++
			env.tuiSess = sess
			return sess.Close()
		},
		Clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
		StdinPiped:  func() bool { return env.stdin != "" },
		Interactive: func() bool { return false },
		ReadSecret: func(string, io.Reader, io.Writer) (string, error) {
			return env.secret, nil
		},
		Now: func() time.Time { return fixedNow },
	}
	return env
}

// run executes the root command with args and returns stdout and stderr
func (e *testEnv) run(args ...string) (string, string, error) {
	cmd := NewRootCmd(e.deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(e.stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) dataDir() string {
	return filepath.Join(e.home, "data")
}

func (e *testEnv) store(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.NewStoreWithFiles(e.dataDir(), history.DefaultFileNames())
	require.NoError(t, err)
	return store
}

func (e *testEnv) chats(t *testing.T) history.ChatHistory {
	t.Helper()
	h, err := e.store(t).Chats().Load(history.ChatHistory{})
	require.NoError(t, err)
	return h
}

// seedChats writes a chat history document with the given threads in order
func (e *testEnv) seedChats(t *testing.T, current string, threads ...[]string) []string {
	t.Helper()
	h := history.ChatHistory{Chats: map[string][]history.StoredMessage{}}
	var ids []string
	for i, texts := range threads {
		id := strings.Repeat(string(rune('a'+i)), 8) + "-0000"
		var msgs []history.StoredMessage
		for j, text := range texts {
			typ := history.TypeUser
			if j%2 == 1 {
				typ = history.TypeAI
			}
			msgs = append(msgs, history.StoredMessage{Type: typ, Text: text})
		}
		if msgs == nil {
			msgs = []history.StoredMessage{}
		}
		h.Chats[id] = msgs
		h.Order = append(h.Order, id)
		ids = append(ids, id)
	}
	h.CurrentChatID = current
	if current == "" && len(ids) > 0 {
		h.CurrentChatID = ids[0]
	}
	require.NoError(t, e.store(t).Chats().Save(h))
	return ids
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
