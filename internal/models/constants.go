// Package models contains the enumerations and constants for the inference provider.
package models

import (
	"fmt"
	"strconv"
	"strings"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
)

// Endpoints for the Pollinations inference provider
const (
	EndpointText  = "https://text.pollinations.ai"
	EndpointImage = "https://image.pollinations.ai"
)

// AudioModel is the text endpoint model that returns synthesized speech
const AudioModel = "openai-audio"

// DefaultKeyHeader is the header carrying the shared API key
const DefaultKeyHeader = "TigosProjects1"

// ChatModel is a text-generation model name
type ChatModel string

// Available chat models
const (
	ChatOpenAI  ChatModel = "openai"
	ChatMistral ChatModel = "mistral"
	ChatGemini  ChatModel = "gemini"

	// DefaultChatModel is the first entry of the model menu
	DefaultChatModel = ChatOpenAI
)

// AllChatModels returns the chat models in menu order
func AllChatModels() []ChatModel {
	return []ChatModel{ChatOpenAI, ChatMistral, ChatGemini}
}

// ImageModel is an image-generation model name
type ImageModel string

// Available image models
const (
	ImageFlux        ImageModel = "flux"
	ImageVariation   ImageModel = "variation"
	ImageDreamshaper ImageModel = "dreamshaper"
	ImageAnything    ImageModel = "anything"
	ImagePixart      ImageModel = "pixart"

	DefaultImageModel = ImageFlux
)

// AllImageModels returns the image models in menu order
func AllImageModels() []ImageModel {
	return []ImageModel{ImageFlux, ImageVariation, ImageDreamshaper, ImageAnything, ImagePixart}
}

// Voice is a speech-synthesis voice name
type Voice string

// Available voices
const (
	VoiceNova    Voice = "nova"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceShimmer Voice = "shimmer"

	DefaultVoice = VoiceNova
)

// AllVoices returns the voices in menu order
func AllVoices() []Voice {
	return []Voice{VoiceNova, VoiceEcho, VoiceFable, VoiceOnyx, VoiceShimmer}
}

// Resolution is an image size in WIDTHxHEIGHT form
type Resolution struct {
	Width  int
	Height int
}

// Available resolutions
var (
	Res512  = Resolution{Width: 512, Height: 512}
	Res768  = Resolution{Width: 768, Height: 768}
	Res1024 = Resolution{Width: 1024, Height: 1024}

	DefaultResolution = Res512
)

// AllResolutions returns the resolutions in menu order
func AllResolutions() []Resolution {
	return []Resolution{Res512, Res768, Res1024}
}

// String renders the resolution as stored in image history
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseChatModel validates a chat model name
func ParseChatModel(name string) (ChatModel, error) {
	for _, m := range AllChatModels() {
		if string(m) == strings.ToLower(strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return "", apierrors.NewValidationError("chat model", name, "expected one of "+joinChat())
}

// ParseImageModel validates an image model name
func ParseImageModel(name string) (ImageModel, error) {
	for _, m := range AllImageModels() {
		if string(m) == strings.ToLower(strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return "", apierrors.NewValidationError("image model", name, "expected one of "+joinImage())
}

// ParseVoice validates a voice name
func ParseVoice(name string) (Voice, error) {
	for _, v := range AllVoices() {
		if string(v) == strings.ToLower(strings.TrimSpace(name)) {
			return v, nil
		}
	}
	return "", apierrors.NewValidationError("voice", name, "expected one of "+joinVoices())
}

// ParseResolution parses "512x512" and checks it against the menu
func ParseResolution(s string) (Resolution, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Resolution{}, apierrors.NewValidationError("resolution", s, "expected WIDTHxHEIGHT")
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return Resolution{}, apierrors.NewValidationError("resolution", s, "expected WIDTHxHEIGHT")
	}
	res := Resolution{Width: width, Height: height}
	for _, r := range AllResolutions() {
		if r == res {
			return res, nil
		}
	}
	return Resolution{}, apierrors.NewValidationError("resolution", s, "unsupported size")
}

func joinChat() string {
	names := make([]string, 0, len(AllChatModels()))
	for _, m := range AllChatModels() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

func joinImage() string {
	names := make([]string, 0, len(AllImageModels()))
	for _, m := range AllImageModels() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

func joinVoices() string {
	names := make([]string, 0, len(AllVoices()))
	for _, v := range AllVoices() {
		names = append(names, string(v))
	}
	return strings.Join(names, ", ")
}
