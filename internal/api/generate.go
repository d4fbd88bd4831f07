package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
	"github.com/tigosprojects/tigos/internal/models"
)

// maxErrorSnippet bounds the body text used as an error message
const maxErrorSnippet = 200

// Chat sends text to the chat model and returns the reply
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", apierrors.ErrEmptyInput
	}
	model := req.Model
	if model == "" {
		model = models.DefaultChatModel
	}

	q := url.Values{}
	q.Set("model", string(model))
	endpoint := c.textEndpoint + "/" + url.PathEscape(req.Text) + "?" + q.Encode()

	body, _, err := c.get(ctx, "chat", endpoint)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GenerateImage renders a prompt and returns the encoded image bytes
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apierrors.ErrEmptyInput
	}
	model := req.Model
	if model == "" {
		model = models.DefaultImageModel
	}
	res := req.Resolution
	if res.Width == 0 || res.Height == 0 {
		res = models.DefaultResolution
	}

	q := url.Values{}
	q.Set("model", string(model))
	q.Set("width", strconv.Itoa(res.Width))
	q.Set("height", strconv.Itoa(res.Height))
	q.Set("nologo", strconv.FormatBool(req.NoLogo))
	endpoint := c.imageEndpoint + "/prompt/" + url.PathEscape(req.Prompt) + "?" + q.Encode()

	body, contentType, err := c.get(ctx, "image", endpoint)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, apierrors.NewAPIErrorWithBody(http.StatusOK, endpoint,
			"response is not an image: "+contentType, snippet(body))
	}
	return body, nil
}

// Synthesize converts text to speech and returns the audio bytes
func (c *Client) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apierrors.ErrEmptyInput
	}
	voice := req.Voice
	if voice == "" {
		voice = models.DefaultVoice
	}

	q := url.Values{}
	q.Set("model", models.AudioModel)
	q.Set("voice", string(voice))
	endpoint := c.textEndpoint + "/" + url.PathEscape(req.Text) + "?" + q.Encode()

	body, _, err := c.get(ctx, "speech", endpoint)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// get performs one GET and returns the body and content type of a 2xx response
func (c *Client) get(ctx context.Context, op, endpoint string) ([]byte, string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if c.apiKey != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}

	start := time.Now()
	c.log.Debug().Str("op", op).Str("endpoint", redact(endpoint)).Msg("request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("request failed")
		return nil, "", classifyTransportError(ctx, op, endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", classifyTransportError(ctx, op, endpoint, err)
	}

	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint,
			extractErrorMessage(resp.StatusCode, body), string(body))
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// extractErrorMessage pulls a human message out of an error response body
func extractErrorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		for _, path := range []string{"error.message", "message", "error"} {
			if v := parsed.Get(path); v.Exists() && v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	if s := strings.TrimSpace(snippet(body)); s != "" {
		return s
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func classifyTransportError(ctx context.Context, op, endpoint string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierrors.NewTimeoutError(op)
	}
	return apierrors.NewNetworkError(op, endpoint, err)
}

func snippet(body []byte) string {
	s := string(body)
	runes := []rune(s)
	if len(runes) > maxErrorSnippet {
		return string(runes[:maxErrorSnippet])
	}
	return s
}

// redact keeps logs to the host and query, dropping the user text in the path
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "<invalid url>"
	}
	return u.Scheme + "://" + u.Host + "/...?" + u.RawQuery
}
