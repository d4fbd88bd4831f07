package models

import (
	"testing"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
)

func TestAllChatModels(t *testing.T) {
	models := AllChatModels()

	if len(models) != 3 {
		t.Fatalf("AllChatModels() returned %d models, expected 3", len(models))
	}
	if models[0] != DefaultChatModel {
		t.Errorf("first chat model = %s, want default %s", models[0], DefaultChatModel)
	}
}

func TestParseChatModel(t *testing.T) {
	tests := []struct {
		name    string
		want    ChatModel
		wantErr bool
	}{
		{"openai", ChatOpenAI, false},
		{"Mistral", ChatMistral, false},
		{" gemini ", ChatGemini, false},
		{"gpt-5", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChatModel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChatModel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseChatModel(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseImageModel(t *testing.T) {
	for _, m := range AllImageModels() {
		got, err := ParseImageModel(string(m))
		if err != nil || got != m {
			t.Errorf("ParseImageModel(%s) = %s, %v", m, got, err)
		}
	}

	if _, err := ParseImageModel("midjourney"); err == nil {
		t.Error("expected error for unknown image model")
	}
}

func TestParseVoice(t *testing.T) {
	got, err := ParseVoice("ONYX")
	if err != nil {
		t.Fatalf("ParseVoice() error = %v", err)
	}
	if got != VoiceOnyx {
		t.Errorf("ParseVoice() = %s, want onyx", got)
	}

	_, err = ParseVoice("robot")
	var vErr *apierrors.ValidationError
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !asValidation(err, &vErr) || vErr.Field != "voice" {
		t.Errorf("expected voice ValidationError, got %v", err)
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in      string
		want    Resolution
		wantErr bool
	}{
		{"512x512", Res512, false},
		{"768X768", Res768, false},
		{"1024x1024", Res1024, false},
		{"800x600", Resolution{}, true},
		{"big", Resolution{}, true},
		{"axb", Resolution{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResolution(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResolution(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseResolution(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolutionString(t *testing.T) {
	if Res768.String() != "768x768" {
		t.Errorf("String() = %s", Res768.String())
	}
}

func asValidation(err error, target **apierrors.ValidationError) bool {
	v, ok := err.(*apierrors.ValidationError)
	if ok {
		*target = v
	}
	return ok
}
