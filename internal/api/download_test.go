package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadSpeech(t *testing.T) {
	gw := &MockGateway{SpeechVal: []byte("RIFFWAVE")}
	dest := filepath.Join(t.TempDir(), "nested", "hello")

	path, err := DownloadSpeech(context.Background(), gw, SpeechRequest{Text: "hello", Voice: "echo"}, dest)
	require.NoError(t, err)

	assert.Equal(t, ".wav", filepath.Ext(path))
	assert.True(t, filepath.IsAbs(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFFWAVE", string(data))

	calls := gw.SpeechCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "hello", calls[0].Text)
}

func TestDownloadSpeech_KeepsExtension(t *testing.T) {
	gw := &MockGateway{SpeechVal: []byte("ID3")}
	dest := filepath.Join(t.TempDir(), "out.mp3")

	path, err := DownloadSpeech(context.Background(), gw, SpeechRequest{Text: "x"}, dest)
	require.NoError(t, err)
	assert.Equal(t, ".mp3", filepath.Ext(path))
}

func TestDownloadSpeech_GatewayError(t *testing.T) {
	gw := &MockGateway{SpeechErr: errors.New("boom")}
	dest := filepath.Join(t.TempDir(), "out.wav")

	_, err := DownloadSpeech(context.Background(), gw, SpeechRequest{Text: "x"}, dest)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no file should be written on failure")
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveImage([]byte{0xff, 0xd8, 0xff, 0xe0}, filepath.Join(dir, "fox"))
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(path))

	path, err = SaveImage([]byte("\x89PNG...."), filepath.Join(dir, "fox.png"))
	require.NoError(t, err)
	assert.Equal(t, "fox.png", filepath.Base(path))

	_, err = SaveImage([]byte("x"), "")
	assert.Error(t, err)
}

func TestSaveAudio(t *testing.T) {
	path, err := SaveAudio([]byte("RIFF"), filepath.Join(t.TempDir(), "clip"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "clip.wav"))
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte("\x89PNG\r\n"), ".png"},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xdb}, ".jpg"},
		{"gif", []byte("GIF89a"), ".gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), ".webp"},
		{"unknown", []byte("????"), ".png"},
		{"empty", nil, ".png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageExtension(tt.data))
		})
	}
}

func TestSuggestFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 1, 0, time.UTC)

	assert.Equal(t, "a-red-fox_20240309_140501", SuggestFilename("A red fox!", now))
	assert.Equal(t, "tigos_20240309_140501", SuggestFilename("???", now))

	long := SuggestFilename(strings.Repeat("word ", 20), now)
	name := strings.TrimSuffix(long, "_20240309_140501")
	assert.LessOrEqual(t, len(name), 40)
	assert.False(t, strings.HasSuffix(name, "-"))
}
