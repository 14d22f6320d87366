// Package search finds and sanitizes web pages describing dietary
// restrictions for a single health condition.
package search

import (
	"context"
	"errors"
)

// ErrSearchFailed wraps every failure of the primary query for a term.
var ErrSearchFailed = errors.New("search failed")

const (
	defaultTitle       = "No title available"
	defaultDescription = "No description available"
)

// WebResult is one accepted search hit with its sanitized page text.
type WebResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// OrganicResult is a ranked hit as returned by a search backend.
type OrganicResult struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Backend returns up to count rank-ordered results for query.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, count int) ([]OrganicResult, error)
}

// PageFetcher returns the raw body of a result page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
