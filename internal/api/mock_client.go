package api

import (
	"context"
	"sync"
)

// MockGateway is a Gateway that returns canned values. It is safe for
// concurrent use so dispatcher goroutines can share it.
type MockGateway struct {
	ChatVal   string
	ChatErr   error
	ImageVal  []byte
	ImageErr  error
	SpeechVal []byte
	SpeechErr error

	// ChatFunc overrides ChatVal/ChatErr when set
	ChatFunc func(ctx context.Context, req ChatRequest) (string, error)

	mu          sync.Mutex
	chatCalls   []ChatRequest
	imageCalls  []ImageRequest
	speechCalls []SpeechRequest
}

var _ Gateway = (*MockGateway)(nil)

// Chat records the request and returns ChatVal/ChatErr
func (m *MockGateway) Chat(ctx context.Context, req ChatRequest) (string, error) {
	m.mu.Lock()
	m.chatCalls = append(m.chatCalls, req)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return m.ChatVal, m.ChatErr
}

// GenerateImage records the request and returns ImageVal/ImageErr
func (m *MockGateway) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageCalls = append(m.imageCalls, req)
	return m.ImageVal, m.ImageErr
}

// Synthesize records the request and returns SpeechVal/SpeechErr
func (m *MockGateway) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speechCalls = append(m.speechCalls, req)
	return m.SpeechVal, m.SpeechErr
}

// ChatCalls returns the chat requests seen so far
func (m *MockGateway) ChatCalls() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatRequest(nil), m.chatCalls...)
}

// ImageCalls returns the image requests seen so far
func (m *MockGateway) ImageCalls() []ImageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ImageRequest(nil), m.imageCalls...)
}

// SpeechCalls returns the speech requests seen so far
func (m *MockGateway) SpeechCalls() []SpeechRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SpeechRequest(nil), m.speechCalls...)
}

// OfflineGateway answers every request locally, for dry runs without network
func OfflineGateway() *MockGateway {
	return &MockGateway{
		ChatFunc: func(_ context.Context, req ChatRequest) (string, error) {
			return "(offline) " + req.Text, nil
		},
		ImageVal:  []byte("\x89PNG\r\n\x1a\n"),
		SpeechVal: []byte("RIFF\x00\x00\x00\x00WAVE"),
	}
}
