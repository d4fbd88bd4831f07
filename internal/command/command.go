// Package command classifies raw user input into chat, image or speech requests.
package command

import (
	"regexp"
	"strings"
)

// Kind is the kind of remote operation an input maps to
type Kind int

const (
	KindChat Kind = iota
	KindImage
	KindTTS
)

// String returns a short name for the kind
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindTTS:
		return "tts"
	default:
		return "chat"
	}
}

// TTSPrefix marks an input as a text-to-speech request
const TTSPrefix = "/tts "

// imageTrigger matches "generate an image ...", "create me a image ..." and so on.
// The prompt is everything after the word "image".
var imageTrigger = regexp.MustCompile(`(?is)^(?:generate|create)\s+(?:me\s+)?an?\s+image\s+(.+)$`)

// Request is a classified input
type Request struct {
	Kind Kind
	Text string // chat text, image prompt or text to speak
}

// Classify maps input to a request. Empty or whitespace-only input reports false.
// Rules are tried in order: image trigger, TTS prefix, chat.
func Classify(input string) (Request, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Request{}, false
	}

	if m := imageTrigger.FindStringSubmatch(input); m != nil {
		if prompt := strings.TrimSpace(m[1]); prompt != "" {
			return Request{Kind: KindImage, Text: prompt}, true
		}
	}

	if strings.HasPrefix(input, TTSPrefix) {
		if text := strings.TrimSpace(input[len(TTSPrefix):]); text != "" {
			return Request{Kind: KindTTS, Text: text}, true
		}
	}

	return Request{Kind: KindChat, Text: input}, true
}

// Echo returns the user message recorded before a request is dispatched
func Echo(req Request) string {
	switch req.Kind {
	case KindImage:
		return "Generate image: " + req.Text
	case KindTTS:
		return TTSPrefix + req.Text
	default:
		return req.Text
	}
}

// Slash is a client-side command handled by the presentation layer
type Slash struct {
	Name string // without the leading slash, lower-cased
	Arg  string
}

// slashCommands are handled locally and never reach the gateway
var slashCommands = map[string]bool{
	"new":    true,
	"switch": true,
	"save":   true,
	"copy":   true,
	"exit":   true,
	"quit":   true,
	"help":   true,
}

// ParseSlash recognises a client-side command such as "/switch 2"
func ParseSlash(input string) (Slash, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return Slash{}, false
	}

	name, arg, _ := strings.Cut(input[1:], " ")
	name = strings.ToLower(name)
	if !slashCommands[name] {
		return Slash{}, false
	}
	return Slash{Name: name, Arg: strings.TrimSpace(arg)}, true
}
