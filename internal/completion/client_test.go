package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "foodlens/internal/common/errors"
	apphttp "foodlens/internal/common/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestClient(url string) *Client {
	return NewClient(apphttp.NewClient(time.Second), url, "sk-test", "gpt-4.1")
}

func TestClient_Complete_TextOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"model": "gpt-4.1",
			"temperature": 0,
			"max_tokens": 5,
			"messages": [
				{"role": "system", "content": "be brief"},
				{"role": "user", "content": "Hello"}
			]
		}`, string(raw))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Hi"}}]}`))
	}))
	defer server.Close()

	text, err := createTestClient(server.URL).Complete(context.Background(), Request{
		Purpose:   "test",
		System:    "be brief",
		Parts:     []Part{{Text: "Hello"}},
		MaxTokens: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi", text)
}

func TestClient_Complete_WithImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 1)
		assert.JSONEq(t, `[
			{"type":"text","text":"what is this"},
			{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,AAAA"}}
		]`, string(body.Messages[0].Content))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"1. Oat bar"}}]}`))
	}))
	defer server.Close()

	text, err := createTestClient(server.URL).Complete(context.Background(), Request{
		Parts: []Part{{Text: "what is this"}, {ImageURL: "data:image/jpeg;base64,AAAA"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Oat bar", text)
}

func TestClient_Complete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"backend message", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, "Incorrect API key provided"},
		{"plain status", http.StatusBadGateway, `upstream down`, "502"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := createTestClient(server.URL).Complete(context.Background(), Request{Parts: []Part{{Text: "x"}}})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCompletionFailed)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTransport))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_Complete_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := createTestClient(url).Complete(context.Background(), Request{Parts: []Part{{Text: "x"}}})
	assert.ErrorIs(t, err, ErrCompletionFailed)
}
