package search

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"foodlens/internal/common/http"
)

// SerpAPI queries a SerpAPI-compatible web search endpoint.
type SerpAPI struct {
	client  *http.Client
	baseURL string
	apiKey  string
	engine  string
}

func NewSerpAPI(client *http.Client, baseURL, apiKey, engine string) *SerpAPI {
	return &SerpAPI{client: client, baseURL: baseURL, apiKey: apiKey, engine: engine}
}

type serpResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

func (s *SerpAPI) Name() string { return "serpapi" }

func (s *SerpAPI) Search(ctx context.Context, query string, count int) ([]OrganicResult, error) {
	params := url.Values{}
	params.Set("engine", s.engine)
	params.Set("q", query)
	params.Set("api_key", s.apiKey)
	params.Set("num", strconv.Itoa(count))

	var resp serpResponse
	if err := s.client.GetJSON(ctx, s.baseURL+"/search.json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}

	if len(resp.OrganicResults) > count {
		return resp.OrganicResults[:count], nil
	}
	return resp.OrganicResults, nil
}
