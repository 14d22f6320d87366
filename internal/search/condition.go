package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/common/metrics"
)

const (
	primaryQuery     = "food prohibited in %s"
	alternativeQuery = "foods to avoid with %s"
)

type Config struct {
	MaxResults         int
	CandidateCount     int
	ExcludedDomains    []string
	ExcludedExtensions []string
}

// Searcher runs the two-pass condition search against one backend.
type Searcher struct {
	config  *Config
	backend Backend
	fetcher PageFetcher
	logger  logger.Logger
}

func NewSearcher(config *Config, backend Backend, fetcher PageFetcher, log logger.Logger) *Searcher {
	return &Searcher{
		config:  config,
		backend: backend,
		fetcher: fetcher,
		logger:  logger.Component(log, "condition-search").With(map[string]interface{}{"backend": backend.Name()}),
	}
}

// accumulator carries accepted domains and results across both passes.
type accumulator struct {
	max     int
	domains map[string]struct{}
	results []WebResult
}

func newAccumulator(max int) *accumulator {
	return &accumulator{max: max, domains: make(map[string]struct{})}
}

func (a *accumulator) full() bool {
	return len(a.results) >= a.max
}

func (a *accumulator) seen(domain string) bool {
	_, ok := a.domains[domain]
	return ok
}

func (a *accumulator) accept(domain string, r WebResult) {
	a.domains[domain] = struct{}{}
	a.results = append(a.results, r)
}

// SearchCondition returns up to MaxResults pages for term, at most one per
// registrable domain. A failed primary query is an error; a failed
// alternative query or page fetch only shortens the result list.
func (s *Searcher) SearchCondition(ctx context.Context, term string) ([]WebResult, error) {
	acc := newAccumulator(s.config.MaxResults)

	if err := s.runPass(ctx, fmt.Sprintf(primaryQuery, term), acc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, apperrors.NewTransportError(s.backend.Name(), err))
	}

	if !acc.full() {
		if err := s.runPass(ctx, fmt.Sprintf(alternativeQuery, term), acc); err != nil {
			s.logger.Warn("alternative query failed, keeping primary results", map[string]interface{}{
				"term":     term,
				"accepted": len(acc.results),
				"error":    err,
			})
		}
	}

	return acc.results, nil
}

func (s *Searcher) runPass(ctx context.Context, query string, acc *accumulator) error {
	hits, err := s.backend.Search(ctx, query, s.config.CandidateCount)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(s.backend.Name(), metrics.StatusError).Inc()
		return err
	}
	metrics.SearchRequests.WithLabelValues(s.backend.Name(), metrics.StatusSuccess).Inc()

	for _, hit := range hits {
		if acc.full() {
			break
		}
		if hit.Link == "" {
			continue
		}

		domain, ok := s.eligibleDomain(hit.Link, acc)
		if !ok {
			continue
		}

		raw, err := s.fetcher.Fetch(ctx, hit.Link)
		if err != nil {
			metrics.PageFetches.WithLabelValues(metrics.StatusError).Inc()
			s.logger.Warn("page fetch failed, skipping result", map[string]interface{}{
				"url":   hit.Link,
				"error": err,
			})
			continue
		}
		metrics.PageFetches.WithLabelValues(metrics.StatusSuccess).Inc()

		acc.accept(domain, newWebResult(hit, Sanitize(raw)))
	}
	return nil
}

// eligibleDomain applies the exclusion, extension and dedup filters and
// returns the registrable domain of link.
func (s *Searcher) eligibleDomain(link string, acc *accumulator) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return "", false
	}

	domain := RegistrableDomain(u.Hostname())
	for _, excluded := range s.config.ExcludedDomains {
		if strings.Contains(domain, excluded) {
			return "", false
		}
	}

	path := strings.ToLower(u.Path)
	for _, ext := range s.config.ExcludedExtensions {
		if strings.HasSuffix(path, strings.ToLower(ext)) {
			return "", false
		}
	}

	if acc.seen(domain) {
		return "", false
	}
	return domain, true
}

// RegistrableDomain is the lower-cased hostname without a leading "www.".
func RegistrableDomain(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func newWebResult(hit OrganicResult, content string) WebResult {
	r := WebResult{
		URL:         hit.Link,
		Title:       hit.Title,
		Description: hit.Snippet,
		Content:     content,
	}
	if r.Title == "" {
		r.Title = defaultTitle
	}
	if r.Description == "" {
		r.Description = defaultDescription
	}
	return r
}
