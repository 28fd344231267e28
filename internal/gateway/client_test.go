package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokah-app/lokah/internal/config"
)

func completionBody(content string) string {
	msg, _ := json.Marshal(content)
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "google/gemini-2.5-flash",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}]
	}`, msg)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(config.GatewayConfig{
		BaseURL: srv.URL + "/v1/",
		APIKey:  "test-key",
		Model:   "google/gemini-2.5-flash",
		Timeout: 5 * time.Second,
	})
	return c, srv
}

func TestComplete_Success(t *testing.T) {
	var captured map[string]any
	var authHeader, path string

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody(`{"reply_text":"hey!"}`))
	})

	text, err := c.Complete(context.Background(), Request{
		Task: "chat_turn",
		Messages: []Message{
			{Role: RoleSystem, Content: "system prompt"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
		},
		Params: Params{Temperature: 0.7, MaxTokens: 800, TopP: 1, PresencePenalty: 0.3, FrequencyPenalty: 0.3},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"reply_text":"hey!"}`, text)

	assert.Equal(t, "Bearer test-key", authHeader)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "google/gemini-2.5-flash", captured["model"])
	assert.InDelta(t, 0.7, captured["temperature"], 1e-9)
	assert.InDelta(t, 800, captured["max_tokens"], 1e-9)
	assert.InDelta(t, 0.3, captured["presence_penalty"], 1e-9)
	assert.NotContains(t, captured, "response_format")

	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
}

func TestComplete_JSONModeAndClamp(t *testing.T) {
	var captured map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody(`{}`))
	})

	_, err := c.Complete(context.Background(), Request{
		Task:     "extract_memory",
		Messages: []Message{{Role: RoleUser, Content: "x"}},
		Params:   Params{Temperature: 1.8, MaxTokens: 250, JSONMode: true},
	})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, captured["temperature"], 1e-9)
	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
}

func TestComplete_StatusCategories(t *testing.T) {
	tests := []struct {
		status   int
		category Category
	}{
		{http.StatusTooManyRequests, CategoryRateLimited},
		{http.StatusPaymentRequired, CategoryPaymentRequired},
		{http.StatusInternalServerError, CategoryUpstreamError},
		{http.StatusBadRequest, CategoryUpstreamError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			var calls atomic.Int32
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope"}}`)
			})

			_, err := c.Complete(context.Background(), Request{Task: "chat_turn"})
			require.Error(t, err)

			var gwErr *Error
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tt.category, gwErr.Category)
			assert.Equal(t, tt.status, gwErr.HTTPStatus)
			assert.Equal(t, int32(1), calls.Load(), "client must not retry on its own")
		})
	}
}

func TestComplete_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(config.GatewayConfig{BaseURL: url + "/v1/", APIKey: "k", Model: "m", Timeout: time.Second})
	_, err := c.Complete(context.Background(), Request{Task: "chat_turn"})
	require.Error(t, err)

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, CategoryNetworkError, gwErr.Category)
	assert.Zero(t, gwErr.HTTPStatus)
}

func TestComplete_NoChoicesYieldsEmptyText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":0,"model":"m","choices":[]}`)
	})

	text, err := c.Complete(context.Background(), Request{Task: "chat_turn"})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestCategoryForStatus(t *testing.T) {
	assert.Equal(t, CategoryRateLimited, CategoryForStatus(429))
	assert.Equal(t, CategoryPaymentRequired, CategoryForStatus(402))
	assert.Equal(t, CategoryUpstreamError, CategoryForStatus(503))
}

func TestClampTemperature(t *testing.T) {
	assert.Equal(t, 0.0, ClampTemperature(-0.5))
	assert.Equal(t, 0.4, ClampTemperature(0.4))
	assert.Equal(t, 1.0, ClampTemperature(2))
}
