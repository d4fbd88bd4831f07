package speech

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeNarrator(available map[string]bool, engines []engine) *SystemNarrator {
	return &SystemNarrator{
		lookPath: func(name string) (string, error) {
			if available[name] {
				return name, nil
			}
			return "", exec.ErrNotFound
		},
		// "true"/"false" stand in for speech programs
		command: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			if name == "broken" {
				return exec.CommandContext(ctx, "false")
			}
			return exec.CommandContext(ctx, "true")
		},
		engines: engines,
	}
}

func echoArgs(text string) []string { return []string{text} }

func TestSystemNarrator_NoEngine(t *testing.T) {
	n := fakeNarrator(nil, unixEngines())

	_, err := n.Engine()
	assert.ErrorIs(t, err, ErrNoEngine)
	assert.ErrorIs(t, n.Speak(context.Background(), "hello"), ErrNoEngine)
}

func TestSystemNarrator_PicksFirstAvailable(t *testing.T) {
	n := fakeNarrator(map[string]bool{"espeak": true, "spd-say": true}, unixEngines())

	path, err := n.Engine()
	require.NoError(t, err)
	assert.Equal(t, "espeak", path)
}

func TestSystemNarrator_Speak(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	n := fakeNarrator(map[string]bool{"ok": true}, []engine{{name: "ok", args: echoArgs}})

	assert.NoError(t, n.Speak(context.Background(), "hello"))
}

func TestSystemNarrator_SpeakFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	n := fakeNarrator(map[string]bool{"broken": true}, []engine{{name: "broken", args: echoArgs}})

	err := n.Speak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken failed")
}

func TestSystemNarrator_EmptyText(t *testing.T) {
	n := fakeNarrator(nil, unixEngines())
	assert.NoError(t, n.Speak(context.Background(), "   "))
}

func TestEngineArgs(t *testing.T) {
	ps := windowsEngines()[0].args("it's")
	script := ps[len(ps)-1]
	assert.Contains(t, script, "Speak('it''s')")

	args := unixEngines()[0].args("-rf")
	assert.Equal(t, []string{"--", "-rf"}, args, "text must not be parsed as flags")

	assert.Equal(t, []string{"hi"}, darwinEngines()[0].args("hi"))
}

func TestNewSystemNarrator(t *testing.T) {
	n := NewSystemNarrator()
	assert.NotEmpty(t, n.engines)
}

func TestNopNarrator(t *testing.T) {
	var n Narrator = NopNarrator{}
	assert.NoError(t, n.Speak(context.Background(), "x"))
}

func TestRecordingNarrator(t *testing.T) {
	r := NewRecordingNarrator(1)
	r.Err = errors.New("muted")

	err := r.Speak(context.Background(), "first")
	assert.EqualError(t, err, "muted")
	// Full channel must not block
	r.Speak(context.Background(), "second")

	got := <-r.Spoken
	assert.True(t, strings.EqualFold(got, "first"))
}
