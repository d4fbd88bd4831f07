package api

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tigosprojects/tigos/internal/models"
)

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(WithHTTPClient(NewMockDoer(nil, 200, "")))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.TextEndpoint() != models.EndpointText {
		t.Errorf("TextEndpoint() = %s, want %s", client.TextEndpoint(), models.EndpointText)
	}
	if client.ImageEndpoint() != models.EndpointImage {
		t.Errorf("ImageEndpoint() = %s, want %s", client.ImageEndpoint(), models.EndpointImage)
	}
	if client.keyHeader != models.DefaultKeyHeader {
		t.Errorf("keyHeader = %s, want %s", client.keyHeader, models.DefaultKeyHeader)
	}
	if client.HasAPIKey() {
		t.Error("HasAPIKey() should be false without WithAPIKey")
	}
	if client.timeout != 0 {
		t.Errorf("timeout = %v, want none", client.timeout)
	}
}

func TestNewClient_Options(t *testing.T) {
	tests := []struct {
		name  string
		opt   ClientOption
		check func(*Client) bool
	}{
		{"api key", WithAPIKey("secret"), func(c *Client) bool { return c.apiKey == "secret" && c.HasAPIKey() }},
		{"key header", WithKeyHeader("X-Key"), func(c *Client) bool { return c.keyHeader == "X-Key" }},
		{"empty key header keeps default", WithKeyHeader(""), func(c *Client) bool { return c.keyHeader == models.DefaultKeyHeader }},
		{"text endpoint trims slash", WithTextEndpoint("http://localhost:8080/"), func(c *Client) bool { return c.textEndpoint == "http://localhost:8080" }},
		{"image endpoint", WithImageEndpoint("http://img.local"), func(c *Client) bool { return c.imageEndpoint == "http://img.local" }},
		{"empty endpoint keeps default", WithImageEndpoint(""), func(c *Client) bool { return c.imageEndpoint == models.EndpointImage }},
		{"timeout", WithTimeout(5 * time.Second), func(c *Client) bool { return c.timeout == 5*time.Second }},
		{"logger", WithLogger(zerolog.Nop()), func(c *Client) bool { return c.log.GetLevel() == zerolog.Disabled }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(WithHTTPClient(NewMockDoer(nil, 200, "")), tt.opt)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if !tt.check(client) {
				t.Errorf("option %s not applied", tt.name)
			}
		})
	}
}

func TestNewClient_BuildsTLSClient(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.httpClient == nil {
		t.Error("expected a default HTTP client")
	}
}

func TestTransportTimeout(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{-time.Second, 0},
		{1500 * time.Millisecond, 1500},
		{10 * time.Minute, 600000},
	}
	for _, tt := range tests {
		if got := transportTimeout(tt.in); got != tt.want {
			t.Errorf("transportTimeout(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewClient_BuildsTLSClientWithoutTimeout(t *testing.T) {
	client, err := NewClient(WithTimeout(0))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.httpClient == nil {
		t.Error("expected a default HTTP client")
	}
}
