package api

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func TestMockGateway_ConcurrentCalls(t *testing.T) {
	gw := &MockGateway{ChatVal: "pong"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gw.Chat(context.Background(), ChatRequest{Text: "ping"})
		}()
	}
	wg.Wait()

	if len(gw.ChatCalls()) != 20 {
		t.Errorf("ChatCalls() = %d, want 20", len(gw.ChatCalls()))
	}
}

func TestMockGateway_ChatFunc(t *testing.T) {
	gw := &MockGateway{
		ChatVal: "ignored",
		ChatFunc: func(_ context.Context, req ChatRequest) (string, error) {
			return strings.ToUpper(req.Text), nil
		},
	}

	got, err := gw.Chat(context.Background(), ChatRequest{Text: "hi"})
	if err != nil || got != "HI" {
		t.Errorf("Chat() = %q, %v", got, err)
	}
}

func TestOfflineGateway(t *testing.T) {
	gw := OfflineGateway()
	ctx := context.Background()

	reply, err := gw.Chat(ctx, ChatRequest{Text: "hello"})
	if err != nil || reply != "(offline) hello" {
		t.Errorf("Chat() = %q, %v", reply, err)
	}

	img, err := gw.GenerateImage(ctx, ImageRequest{Prompt: "x"})
	if err != nil || ImageExtension(img) != ".png" {
		t.Errorf("GenerateImage() returned %q, %v", img, err)
	}

	audio, err := gw.Synthesize(ctx, SpeechRequest{Text: "x"})
	if err != nil || !strings.HasPrefix(string(audio), "RIFF") {
		t.Errorf("Synthesize() returned %q, %v", audio, err)
	}

	if len(gw.ImageCalls()) != 1 || len(gw.SpeechCalls()) != 1 {
		t.Error("offline gateway should record calls")
	}
}
