// Package api provides the remote inference gateway for chat, image and speech.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	"github.com/tigosprojects/tigos/internal/models"
)

// Doer executes HTTP requests. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChatRequest is a text completion request
type ChatRequest struct {
	Text  string
	Model models.ChatModel
}

// ImageRequest is an image generation request
type ImageRequest struct {
	Prompt     string
	Model      models.ImageModel
	Resolution models.Resolution
	NoLogo     bool
}

// SpeechRequest is a speech synthesis request
type SpeechRequest struct {
	Text  string
	Voice models.Voice
}

// Gateway is the remote inference provider
type Gateway interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error)
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// Client is the HTTP implementation of Gateway
type Client struct {
	httpClient    Doer
	apiKey        string
	keyHeader     string
	textEndpoint  string
	imageEndpoint string
	timeout       time.Duration
	log           zerolog.Logger
}

var _ Gateway = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithAPIKey sets the static key sent with every request
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithKeyHeader sets the header name carrying the API key
func WithKeyHeader(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.keyHeader = name
		}
	}
}

// WithTextEndpoint overrides the chat and speech base URL
func WithTextEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.textEndpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithImageEndpoint overrides the image base URL
func WithImageEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.imageEndpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithHTTPClient replaces the transport
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout bounds each request. Zero means no deadline beyond the caller's context.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the request logger
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// transportTimeout converts the request timeout for tls-client, which would
// otherwise apply its own 30s default. Zero disables the transport deadline.
func transportTimeout(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Millisecond)
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		keyHeader:     models.DefaultKeyHeader,
		textEndpoint:  models.EndpointText,
		imageEndpoint: models.EndpointImage,
		log:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		// Create TLS client with Chrome profile for browser emulation
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutMilliseconds(transportTimeout(client.timeout)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// TextEndpoint returns the chat and speech base URL
func (c *Client) TextEndpoint() string {
	return c.textEndpoint
}

// ImageEndpoint returns the image base URL
func (c *Client) ImageEndpoint() string {
	return c.imageEndpoint
}

// HasAPIKey reports whether requests are authenticated
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}
