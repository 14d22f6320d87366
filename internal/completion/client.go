// Package completion talks to an OpenAI-compatible chat completions endpoint.
package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/http"
	"foodlens/internal/common/metrics"
)

// ErrCompletionFailed wraps every failed completion call.
var ErrCompletionFailed = errors.New("completion failed")

// Part is one piece of user content: either text or an image reference
// (a URL or a data URI).
type Part struct {
	Text     string
	ImageURL string
}

type Request struct {
	Purpose   string // metrics label only
	System    string
	Parts     []Part
	MaxTokens int
}

// Completer returns the completion text for a request. Temperature is
// always zero.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewClient(client *http.Client, baseURL, apiKey, model string) *Client {
	return &Client{http: client, baseURL: baseURL, apiKey: apiKey, model: model}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := c.complete(ctx, req)
	metrics.CompletionDuration.WithLabelValues(req.Purpose).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CompletionRequests.WithLabelValues(req.Purpose, metrics.StatusError).Inc()
		return "", fmt.Errorf("%w: %w", ErrCompletionFailed, apperrors.NewTransportError("genai", err))
	}
	metrics.CompletionRequests.WithLabelValues(req.Purpose, metrics.StatusSuccess).Inc()
	return text, nil
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    buildMessages(req),
		Temperature: 0.0,
		MaxTokens:   req.MaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp chatResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/v1/chat/completions", headers, body, &resp); err != nil {
		return "", describe(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(req Request) []chatMessage {
	var msgs []chatMessage
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}

	// text-only requests use the plain string form
	if len(req.Parts) == 1 && req.Parts[0].ImageURL == "" {
		return append(msgs, chatMessage{Role: "user", Content: req.Parts[0].Text})
	}

	parts := make([]contentPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.ImageURL != "" {
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: p.ImageURL}})
			continue
		}
		parts = append(parts, contentPart{Type: "text", Text: p.Text})
	}
	return append(msgs, chatMessage{Role: "user", Content: parts})
}

// describe surfaces the backend's own error message when it sent one.
func describe(err error) error {
	var statusErr *http.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	var er errorResponse
	if json.Unmarshal([]byte(statusErr.Body), &er) == nil && er.Error.Message != "" {
		return fmt.Errorf("status %d: %s", statusErr.StatusCode, er.Error.Message)
	}
	return err
}
