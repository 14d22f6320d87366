package search

import (
	"context"
	"fmt"

	"foodlens/internal/common/config"
	"foodlens/internal/common/database"
	"foodlens/internal/common/http"
	"foodlens/internal/common/logger"
)

// NewBackend builds the configured search backend. apiKey overrides the
// configured key when non-empty. The elasticsearch index must already exist.
func NewBackend(ctx context.Context, cfg *config.Config, apiKey string) (Backend, error) {
	ws := cfg.APIs.WebSearch
	switch ws.Backend {
	case config.SearchSerpAPI:
		if apiKey == "" {
			apiKey = ws.APIKey
		}
		client := http.NewClient(config.GetDuration(ws.Timeout))
		return NewSerpAPI(client, ws.BaseURL, apiKey, ws.Engine), nil

	case config.SearchElasticsearch:
		client, err := database.NewElasticsearchClient(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		index := cfg.Database.Elasticsearch.Index
		if err := database.CheckIndex(ctx, client, index); err != nil {
			return nil, err
		}
		return NewElasticsearch(client, index), nil
	}
	return nil, fmt.Errorf("unsupported search backend %q", ws.Backend)
}

// NewSearcherForBackend applies the configured search limits to backend.
func NewSearcherForBackend(cfg *config.Config, backend Backend, log logger.Logger) *Searcher {
	fetcher := NewHTTPFetcher(
		http.NewClient(config.GetDuration(cfg.APIs.PageFetch.Timeout)),
		cfg.APIs.PageFetch.MaxBytes,
	)

	return NewSearcher(&Config{
		MaxResults:         cfg.Search.MaxResults,
		CandidateCount:     cfg.Search.CandidateCount,
		ExcludedDomains:    cfg.Search.ExcludedDomains,
		ExcludedExtensions: cfg.Search.ExcludedExtensions,
	}, backend, fetcher, log)
}
