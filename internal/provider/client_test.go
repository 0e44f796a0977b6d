package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(5*time.Second, zerolog.Nop())
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "session-1", r.Header.Get("X-Session-ID"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req.Model)
		assert.Equal(t, 2000, req.MaxTokens)
		assert.Equal(t, 0.7, req.Temperature)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, Message{Role: "user", Content: "hello"}, req.Messages[0])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer srv.Close()

	ep := Endpoint{BaseURL: srv.URL + "/", Key: "secret-key", SessionID: "session-1"}
	reply, err := newTestClient().Chat(context.Background(), ep, "gpt-4", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
}

func TestChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	reply, err := newTestClient().Chat(context.Background(), Endpoint{BaseURL: srv.URL}, "m", "hello")
	require.NoError(t, err)
	assert.Equal(t, NoResponse, reply)
}

func TestChatProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient().Chat(context.Background(), Endpoint{BaseURL: srv.URL}, "m", "hello")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "Invalid API key", err.Error())
}

func TestChatErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient().Chat(context.Background(), Endpoint{BaseURL: srv.URL}, "m", "hello")
	assert.EqualError(t, err, "HTTP 502")
}

func TestChatUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient().Chat(context.Background(), Endpoint{BaseURL: url}, "m", "hello")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := newTestClient()
	assert.NoError(t, client.Ping(context.Background(), Endpoint{BaseURL: srv.URL, Key: "good"}))

	var statusErr *StatusError
	err := client.Ping(context.Background(), Endpoint{BaseURL: srv.URL, Key: "bad"})
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}
