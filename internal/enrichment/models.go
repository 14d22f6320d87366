package enrichment

import (
	"time"

	"foodlens/internal/search"
)

type Category string

const (
	CategoryDisease   Category = "disease"
	CategoryCondition Category = "condition"
	CategoryAllergy   Category = "allergy"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// TermResult is the outcome of searching one term. Status is error only when
// the search itself failed; an empty result list is still a success.
type TermResult struct {
	Condition string             `json:"condition"`
	Category  Category           `json:"type"`
	Results   []search.WebResult `json:"results"`
	Status    Status             `json:"status"`
}

// Record is the cached enrichment for one user. It is always replaced as a
// whole, never merged.
type Record struct {
	Success            bool         `json:"success"`
	TotalContent       string       `json:"total_content"`
	SearchResults      []TermResult `json:"search_results"`
	TotalConditions    int          `json:"total_conditions"`
	SuccessfulSearches int          `json:"successful_searches"`
	Timestamp          int64        `json:"timestamp"` // unix milliseconds
}

func (r *Record) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}
