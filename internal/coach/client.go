// Package coach wraps the hosted text-generation service that produces
// coaching plans. The client holds no store state; callers are expected to
// bound each call with a context and to persist results themselves.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"

const DefaultModel = "llama-3.3-70b-versatile"

// Supported temperature range. Values outside are clamped, never passed
// through to the provider.
const (
	MinTemperature = 0.1
	MaxTemperature = 0.9
)

const maxOutputTokens = 4096

// ErrEmptyResponse marks a call that succeeded at the transport level but
// produced no generated text. Callers can distinguish it from service errors.
var ErrEmptyResponse = errors.New("model returned an empty response")

// APIError is an error payload reported by the generation service itself.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("generation service error (status %d, type %q): %s", e.StatusCode, e.Type, e.Message)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	http       *http.Client
	baseURL    *url.URL
	apiKey     string
	model      string
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxRetries bounds how many extra attempts Generate makes on retryable
// failures. Zero disables retries entirely.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:       &http.Client{Timeout: 60 * time.Second},
		baseURL:    u,
		apiKey:     apiKey,
		model:      DefaultModel,
		maxRetries: 2,
		backoff:    500 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ClampTemperature forces t into the supported range.
func ClampTemperature(t float64) float64 {
	if t < MinTemperature {
		return MinTemperature
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

// Generate sends the prompt and returns the generated text. Retryable
// failures (429, 5xx, transport) are retried with backoff up to the
// configured attempt budget; everything else fails immediately.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	temperature = ClampTemperature(temperature)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}
		text, err := c.generateOnce(ctx, prompt, temperature)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generation service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response (status %s): %w", resp.Status, err)
	}

	if out.Error != nil {
		return "", &APIError{StatusCode: resp.StatusCode, Type: out.Error.Type, Message: out.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}

// retryable reports whether the failure is worth another attempt: rate
// limiting, server-side errors, and transport problems qualify. Auth
// failures, bad requests, and empty responses do not.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
