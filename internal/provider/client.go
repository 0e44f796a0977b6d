package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	chatPath   = "/v1/chat/completions"
	modelsPath = "/v1/models"

	// UserAgent is sent with every request
	UserAgent = "chatvault/1.0"

	// NoResponse is returned when a provider answers without any content
	NoResponse = "No response from AI"

	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
	maxErrorBody       = 64 * 1024
)

var ErrRequestFailed = errors.New("provider request failed")

// StatusError is a non-2xx answer from a provider
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Message is one chat message on the wire
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Endpoint is where and how to reach one registered API
type Endpoint struct {
	BaseURL   string
	Key       string
	SessionID string
}

// Client talks to OpenAI-compatible chat endpoints
type Client struct {
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a client with the given request timeout
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log.With().Str("component", "provider").Logger(),
	}
}

// Chat sends a single user message and returns the first choice's content
func (c *Client) Chat(ctx context.Context, ep Endpoint, model, message string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: message}},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, ep, chatPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if ep.SessionID != "" {
		req.Header.Set("X-Session-ID", ep.SessionID)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrRequestFailed, err)
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return NoResponse, nil
	}
	return out.Choices[0].Message.Content, nil
}

// Ping checks that the endpoint accepts the key by listing its models
func (c *Client) Ping(ctx context.Context, ep Endpoint) error {
	req, err := c.newRequest(ctx, http.MethodGet, ep, modelsPath, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) newRequest(ctx context.Context, method string, ep Endpoint, path string, body io.Reader) (*http.Request, error) {
	url := strings.TrimRight(ep.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ep.Key)
	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}

// do executes req and turns non-2xx answers into a StatusError
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Provider request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	statusErr := &StatusError{StatusCode: resp.StatusCode}
	var apiErr errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&apiErr); err == nil {
		statusErr.Message = apiErr.Error.Message
	}
	return nil, statusErr
}
