package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeBackend struct {
	results map[string][]OrganicResult
	errs    map[string]error
	queries []string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Search(_ context.Context, query string, count int) ([]OrganicResult, error) {
	f.queries = append(f.queries, query)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	res := f.results[query]
	if len(res) > count {
		res = res[:count]
	}
	return res, nil
}

type fakeFetcher struct {
	pages   map[string]string
	fail    map[string]bool
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	if f.fail[url] {
		return "", errors.New("connection reset")
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "<p>page " + url + "</p>", nil
}

func createTestConfig() *Config {
	return &Config{
		MaxResults:         3,
		CandidateCount:     10,
		ExcludedDomains:    []string{"youtube.com", "arxiv.org", "quora.com", "github.com"},
		ExcludedExtensions: []string{".pdf"},
	}
}

func createTestSearcher(t *testing.T, cfg *Config, b *fakeBackend, f *fakeFetcher) *Searcher {
	if cfg == nil {
		cfg = createTestConfig()
	}
	if f == nil {
		f = &fakeFetcher{}
	}
	return NewSearcher(cfg, b, f, logger.NewTestLogger(t))
}

func hit(link string) OrganicResult {
	return OrganicResult{Link: link, Title: "T " + link, Snippet: "S " + link}
}

func urls(results []WebResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.URL
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestSearchCondition_DomainFilteringAndDedup(t *testing.T) {
	b := &fakeBackend{results: map[string][]OrganicResult{
		"food prohibited in gout": {
			hit("https://github.com/a"),
			hit("https://example.com/one"),
			hit("https://www.example.com/two"),
			hit("https://other.org/three"),
		},
	}}
	cfg := createTestConfig()
	cfg.MaxResults = 2

	results, err := createTestSearcher(t, cfg, b, nil).SearchCondition(context.Background(), "gout")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/one", "https://other.org/three"}, urls(results))
	assert.Equal(t, []string{"food prohibited in gout"}, b.queries, "second pass not needed")
}

func TestSearchCondition_Filters(t *testing.T) {
	b := &fakeBackend{results: map[string][]OrganicResult{
		"food prohibited in celiac": {
			{Link: ""},
			hit("https://m.youtube.com/watch?v=1"),
			hit("https://papers.arxiv.org/x"),
			hit("https://site.com/guide.PDF"),
			hit("https://site.com/guide.pdf?download=1"),
			hit("::not a url"),
			hit("https://kept.com/page"),
		},
	}}
	f := &fakeFetcher{}

	results, err := createTestSearcher(t, nil, b, f).SearchCondition(context.Background(), "celiac")
	require.NoError(t, err)

	// a query string after .pdf does not hide the extension from the path check
	assert.Equal(t, []string{"https://kept.com/page"}, urls(results))
	assert.Equal(t, []string{"https://kept.com/page"}, f.fetched)
}

func TestSearchCondition_SecondPassCarriesDedup(t *testing.T) {
	b := &fakeBackend{results: map[string][]OrganicResult{
		"food prohibited in diabetes": {
			hit("https://a.com/1"),
		},
		"foods to avoid with diabetes": {
			hit("https://www.a.com/2"),
			hit("https://b.com/1"),
			hit("https://c.com/1"),
			hit("https://d.com/1"),
		},
	}}

	results, err := createTestSearcher(t, nil, b, nil).SearchCondition(context.Background(), "diabetes")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.com/1", "https://b.com/1", "https://c.com/1"}, urls(results))
	assert.Equal(t, []string{"food prohibited in diabetes", "foods to avoid with diabetes"}, b.queries)
}

func TestSearchCondition_DefaultsAndSanitizedContent(t *testing.T) {
	b := &fakeBackend{results: map[string][]OrganicResult{
		"food prohibited in ibs": {{Link: "https://a.com/x"}},
	}}
	f := &fakeFetcher{pages: map[string]string{
		"https://a.com/x": "<style>p{}</style><p>Avoid &amp; limit</p>",
	}}

	results, err := createTestSearcher(t, nil, b, f).SearchCondition(context.Background(), "ibs")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, WebResult{
		URL:         "https://a.com/x",
		Title:       "No title available",
		Description: "No description available",
		Content:     "Avoid & limit",
	}, results[0])
}

// ==========================
// Error Handling Tests
// ==========================

func TestSearchCondition_PageFetchFailureSkipsResult(t *testing.T) {
	b := &fakeBackend{results: map[string][]OrganicResult{
		"food prohibited in gout": {
			hit("https://a.com/broken"),
			hit("https://a.com/works"),
			hit("https://b.com/1"),
		},
	}}
	f := &fakeFetcher{fail: map[string]bool{"https://a.com/broken": true}}

	results, err := createTestSearcher(t, nil, b, f).SearchCondition(context.Background(), "gout")
	require.NoError(t, err)

	// the failed fetch did not claim a.com
	assert.Equal(t, []string{"https://a.com/works", "https://b.com/1"}, urls(results))
}

func TestSearchCondition_PrimaryFailure(t *testing.T) {
	b := &fakeBackend{errs: map[string]error{
		"food prohibited in gout": errors.New("quota exceeded"),
	}}

	results, err := createTestSearcher(t, nil, b, nil).SearchCondition(context.Background(), "gout")
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTransport))
}

func TestSearchCondition_AlternativeFailureKeepsPrimary(t *testing.T) {
	b := &fakeBackend{
		results: map[string][]OrganicResult{
			"food prohibited in gout": {hit("https://a.com/1")},
		},
		errs: map[string]error{
			"foods to avoid with gout": errors.New("timeout"),
		},
	}

	results, err := createTestSearcher(t, nil, b, nil).SearchCondition(context.Background(), "gout")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com/1"}, urls(results))
}

func TestSearchCondition_EmptyIsSuccess(t *testing.T) {
	b := &fakeBackend{}
	results, err := createTestSearcher(t, nil, b, nil).SearchCondition(context.Background(), "rare")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Len(t, b.queries, 2)
}

func TestSearchCondition_StopsAtMax(t *testing.T) {
	var hits []OrganicResult
	for i := 0; i < 10; i++ {
		hits = append(hits, hit(fmt.Sprintf("https://site%d.com/", i)))
	}
	b := &fakeBackend{results: map[string][]OrganicResult{"food prohibited in x": hits}}
	f := &fakeFetcher{}

	results, err := createTestSearcher(t, nil, b, f).SearchCondition(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Len(t, f.fetched, 3)
}
