package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/config"
	"github.com/tigosprojects/tigos/internal/speech"
	"github.com/tigosprojects/tigos/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// Tests replace them to run commands without a network or a terminal.
type Dependencies struct {
	// NewGateway builds the provider client for a loaded config.
	NewGateway func(cfg config.Config, log zerolog.Logger) (api.Gateway, error)

	// Narrator reads text aloud for `tts --preview`.
	Narrator speech.Narrator

	// RunTUI runs the interactive chat until the user quits.
	RunTUI func(sess tui.Session, opts ...tui.Option) error

	// Clipboard copies text for `ask --copy`.
	Clipboard func(string) error

	// StdinPiped reports whether stdin carries input rather than a terminal.
	StdinPiped func() bool

	// Interactive reports whether stdout is a terminal.
	Interactive func() bool

	// ReadSecret prompts for a value without echo.
	ReadSecret func(prompt string, in io.Reader, out io.Writer) (string, error)

	Now func() time.Time
}

// NewDependencies creates a Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewGateway:  newGateway,
		Narrator:    speech.NewSystemNarrator(),
		RunTUI:      tui.Run,
		Clipboard:   clipboard.WriteAll,
		StdinPiped:  stdinPiped,
		Interactive: isStdoutTTY,
		ReadSecret:  readSecret,
		Now:         time.Now,
	}
}

// newGateway builds the HTTP client with the resolved API key
func newGateway(cfg config.Config, log zerolog.Logger) (api.Gateway, error) {
	key, source, err := config.ResolveAPIKey()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load .env file")
	}
	log.Debug().Str("source", string(source)).Msg("api key resolved")

	return api.NewClient(
		api.WithAPIKey(key),
		api.WithKeyHeader(cfg.APIKeyHeader),
		api.WithTextEndpoint(cfg.Endpoints.Text),
		api.WithImageEndpoint(cfg.Endpoints.Image),
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(log),
	)
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readSecret reads without echo from a terminal, or one line from a pipe
func readSecret(prompt string, in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
