// Package speech reads text aloud with a local speech engine.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoEngine is returned when no local speech engine is installed
var ErrNoEngine = errors.New("no local speech engine found")

// Narrator reads text aloud
type Narrator interface {
	Speak(ctx context.Context, text string) error
}

// engine describes one command-line speech program
type engine struct {
	name string
	args func(text string) []string
}

func darwinEngines() []engine {
	return []engine{
		{name: "say", args: func(text string) []string { return []string{text} }},
	}
}

func windowsEngines() []engine {
	return []engine{
		{name: "powershell", args: func(text string) []string {
			quoted := strings.ReplaceAll(text, "'", "''")
			script := "Add-Type -AssemblyName System.Speech; " +
				"(New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak('" + quoted + "')"
			return []string{"-NoProfile", "-NonInteractive", "-Command", script}
		}},
	}
}

func unixEngines() []engine {
	return []engine{
		{name: "espeak-ng", args: func(text string) []string { return []string{"--", text} }},
		{name: "espeak", args: func(text string) []string { return []string{"--", text} }},
		{name: "spd-say", args: func(text string) []string { return []string{"--wait", "--", text} }},
	}
}

// SystemNarrator speaks through the first speech program found on PATH
type SystemNarrator struct {
	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
	engines  []engine
}

// NewSystemNarrator creates a narrator for the current platform
func NewSystemNarrator() *SystemNarrator {
	var engines []engine
	switch runtime.GOOS {
	case "darwin":
		engines = darwinEngines()
	case "windows":
		engines = windowsEngines()
	default:
		engines = unixEngines()
	}
	return &SystemNarrator{
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
		engines:  engines,
	}
}

// Engine returns the program that would be used, or ErrNoEngine
func (n *SystemNarrator) Engine() (string, error) {
	for _, e := range n.engines {
		if path, err := n.lookPath(e.name); err == nil {
			return path, nil
		}
	}
	return "", ErrNoEngine
}

// Speak blocks until text has been read aloud or ctx is done
func (n *SystemNarrator) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for _, e := range n.engines {
		path, err := n.lookPath(e.name)
		if err != nil {
			continue
		}
		out, err := n.command(ctx, path, e.args(text)...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("%s failed: %w: %s", e.name, err, strings.TrimSpace(string(out)))
		}
		return nil
	}
	return ErrNoEngine
}

// NopNarrator discards text
type NopNarrator struct{}

// Speak does nothing
func (NopNarrator) Speak(context.Context, string) error { return nil }

// RecordingNarrator remembers spoken text, for tests and dry runs
type RecordingNarrator struct {
	Spoken chan string
	Err    error
}

// NewRecordingNarrator creates a RecordingNarrator with a buffered channel
func NewRecordingNarrator(size int) *RecordingNarrator {
	return &RecordingNarrator{Spoken: make(chan string, size)}
}

// Speak sends text on Spoken without blocking
func (r *RecordingNarrator) Speak(_ context.Context, text string) error {
	select {
	case r.Spoken <- text:
	default:
	}
	return r.Err
}
