// Package enrichment gathers web guidance for a user's health terms and
// caches it as a single text corpus.
package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/common/metrics"
	"foodlens/internal/profile"
	"foodlens/internal/search"
)

type ConditionSearcher interface {
	SearchCondition(ctx context.Context, term string) ([]search.WebResult, error)
}

type Pipeline struct {
	searcher      ConditionSearcher
	records       *Repository
	allergySuffix string
	logger        logger.Logger
	now           func() time.Time
}

func NewPipeline(searcher ConditionSearcher, records *Repository, allergySuffix string, log logger.Logger) *Pipeline {
	return &Pipeline{
		searcher:      searcher,
		records:       records,
		allergySuffix: allergySuffix,
		logger:        logger.Component(log, "enrichment"),
		now:           time.Now,
	}
}

// Enrich searches every term sequentially and replaces the user's cached
// record. Diseases come first, then other conditions, then allergies. When
// the record cannot be persisted it is still returned with a storage error.
func (p *Pipeline) Enrich(ctx context.Context, userID string, lists profile.ConditionLists) (*Record, error) {
	start := p.now()
	b := &builder{}

	p.process(ctx, b, lists.Disease, CategoryDisease, "")
	p.process(ctx, b, lists.Condition, CategoryCondition, "")
	p.process(ctx, b, lists.Allergy, CategoryAllergy, p.allergySuffix)

	rec := b.record(p.now())
	metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("enrichment finished", map[string]interface{}{
		"userId":     userID,
		"conditions": rec.TotalConditions,
		"successful": rec.SuccessfulSearches,
	})

	if err := p.records.Save(ctx, userID, rec); err != nil {
		stdErr := apperrors.NewStorageError("save enrichment", err)
		p.logger.Error("failed to persist enrichment record", map[string]interface{}{
			"userId": userID,
			"error":  stdErr,
		})
		return rec, stdErr
	}
	return rec, nil
}

func (p *Pipeline) process(ctx context.Context, b *builder, list string, category Category, suffix string) {
	for _, term := range SplitTerms(list) {
		results, err := p.searcher.SearchCondition(ctx, term+suffix)
		if err != nil {
			metrics.EnrichmentTerms.WithLabelValues(string(category), string(StatusError)).Inc()
			p.logger.Warn("term search failed", map[string]interface{}{
				"category": string(category),
				"error":    apperrors.NewPartialEnrichmentError(term, err),
			})
			b.add(TermResult{Condition: term, Category: category, Results: []search.WebResult{}, Status: StatusError})
			continue
		}

		metrics.EnrichmentTerms.WithLabelValues(string(category), string(StatusSuccess)).Inc()
		if results == nil {
			results = []search.WebResult{}
		}
		b.add(TermResult{Condition: term, Category: category, Results: results, Status: StatusSuccess})
	}
}

// SplitTerms splits a comma-separated list, trimming entries and dropping
// empty ones.
func SplitTerms(list string) []string {
	var terms []string
	for _, part := range strings.Split(list, ",") {
		if t := strings.TrimSpace(part); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

type builder struct {
	results []TermResult
	corpus  strings.Builder
}

func (b *builder) add(tr TermResult) {
	b.results = append(b.results, tr)
	if tr.Status != StatusSuccess {
		return
	}

	fmt.Fprintf(&b.corpus, "Current %s: %s\n\n", tr.Category, tr.Condition)
	for _, r := range tr.Results {
		fmt.Fprintf(&b.corpus, "Title: %s\n", r.Title)
		fmt.Fprintf(&b.corpus, "URL: %s\n", r.URL)
		fmt.Fprintf(&b.corpus, "Description: %s\n", r.Description)
		fmt.Fprintf(&b.corpus, "Content: %s\n\n", r.Content)
	}
}

func (b *builder) record(now time.Time) *Record {
	successful := 0
	for _, r := range b.results {
		if r.Status == StatusSuccess {
			successful++
		}
	}

	results := b.results
	if results == nil {
		results = []TermResult{}
	}
	return &Record{
		Success:            true,
		TotalContent:       b.corpus.String(),
		SearchResults:      results,
		TotalConditions:    len(results),
		SuccessfulSearches: successful,
		Timestamp:          now.UnixMilli(),
	}
}
