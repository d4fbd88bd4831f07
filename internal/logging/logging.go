// Package logging sets up per-session file logging with zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Setup creates a timestamped log file in dir and returns a logger writing to it.
// The terminal is owned by the TUI, so nothing is logged to stdout or stderr.
// The returned Closer closes the file.
func Setup(dir string, verbose bool) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Nop(), nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(dir, fmt.Sprintf("tigos_%s.log", timestamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := New(f, verbose)
	zlog.Logger = logger
	logger.Info().Str("path", path).Msg("session started")

	return logger, f, nil
}

// New returns a plain-text logger writing to w
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Nop returns a disabled logger
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
