package search

import (
	"context"

	"foodlens/internal/common/http"
)

// HTTPFetcher downloads result pages, truncated to maxBytes.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewHTTPFetcher(client *http.Client, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{client: client, maxBytes: maxBytes}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.client.GetText(ctx, url, f.maxBytes)
}
