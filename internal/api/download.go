package api

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DownloadSpeech synthesizes req and writes the audio to path, creating parent
// directories. It returns the absolute path written.
func DownloadSpeech(ctx context.Context, gw Gateway, req SpeechRequest, path string) (string, error) {
	audio, err := gw.Synthesize(ctx, req)
	if err != nil {
		return "", err
	}
	return writeMedia(path, audio, ".wav")
}

// SaveImage writes image bytes to path. A path without extension gets one
// matching the image format.
func SaveImage(data []byte, path string) (string, error) {
	return writeMedia(path, data, ImageExtension(data))
}

// SaveAudio writes audio bytes to path, defaulting to the .wav extension
func SaveAudio(data []byte, path string) (string, error) {
	return writeMedia(path, data, ".wav")
}

func writeMedia(path string, data []byte, defaultExt string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("output path cannot be empty")
	}
	if filepath.Ext(path) == "" {
		path += defaultExt
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	// Return absolute path (fallback to relative path if Abs fails)
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return absPath, nil
}

// ImageExtension sniffs the file extension of encoded image data
func ImageExtension(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return ".png"
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return ".jpg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return ".gif"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return ".webp"
	}
	return ".png"
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SuggestFilename builds a file name from a prompt, e.g. "a-red-fox_150405"
func SuggestFilename(prompt string, now time.Time) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(prompt), "-"), "-")
	if len(name) > 40 {
		name = strings.TrimRight(name[:40], "-")
	}
	if name == "" {
		name = "tigos"
	}
	return name + "_" + now.Format("20060102_150405")
}
