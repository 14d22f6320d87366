// Package session owns the user-facing flows: saving and loading profiles
// with conditional enrichment, and running analyses for the loaded profile.
package session

import (
	"context"
	"errors"
	"time"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/enrichment"
	"foodlens/internal/profile"
)

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// ErrProfileExists is returned when creating a profile whose id is taken.
var ErrProfileExists = errors.New("profile already exists")

type Enricher interface {
	Enrich(ctx context.Context, userID string, lists profile.ConditionLists) (*enrichment.Record, error)
}

type SaveResult struct {
	Outcome  Outcome
	Profile  *profile.HealthProfile
	Enriched bool
	Record   *enrichment.Record
	// EnrichmentErr is set when the record could not be cached. The profile
	// itself was saved.
	EnrichmentErr error
}

// ProfileService is stateless; callers say whether they are editing.
type ProfileService struct {
	profiles *profile.Repository
	records  *enrichment.Repository
	enricher Enricher
	logger   logger.Logger
	now      func() time.Time
}

func NewProfileService(profiles *profile.Repository, records *enrichment.Repository, enricher Enricher, log logger.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		records:  records,
		enricher: enricher,
		logger:   logger.Component(log, "profile-service"),
		now:      time.Now,
	}
}

// Save validates and persists draft, then re-runs enrichment if the condition
// lists changed. An edit that changes nothing writes nothing.
func (s *ProfileService) Save(ctx context.Context, draft *profile.HealthProfile, editing bool) (*SaveResult, error) {
	if err := profile.ValidateDraft(draft); err != nil {
		return nil, err
	}
	normalized := *draft
	normalized.DateOfBirth = profile.BirthDate(draft.DateOfBirth)
	draft = &normalized

	exists := s.profiles.Exists(ctx, draft.UserID)
	if exists && !editing {
		return nil, errors.Join(ErrProfileExists, apperrors.NewProfileExistsError(draft.UserID))
	}

	var saved *profile.HealthProfile
	if exists {
		saved = s.profiles.Load(ctx, draft.UserID)
	}

	if editing && saved != nil && !profile.HasAnyProfileChange(saved, draft) {
		return &SaveResult{Outcome: OutcomeUnchanged, Profile: saved}, nil
	}

	next := *draft
	now := s.now()
	next.LastUpdated = now.UTC()
	next.Age = profile.CalculateAge(next.DateOfBirth, now).Years

	if !s.profiles.Save(ctx, &next) {
		return nil, apperrors.NewStorageError("save profile", nil)
	}

	result := &SaveResult{Outcome: OutcomeCreated, Profile: &next}
	if saved != nil {
		result.Outcome = OutcomeUpdated
	}

	if profile.NeedsEnrichment(saved, &next) {
		rec, err := s.enricher.Enrich(ctx, next.UserID, next.Conditions())
		result.Enriched = true
		result.Record = rec
		if err != nil {
			s.logger.Warn("profile saved but enrichment was not cached", map[string]interface{}{
				"userId": next.UserID,
				"error":  err,
			})
			result.EnrichmentErr = err
		}
	}

	s.logger.Info("profile saved", map[string]interface{}{
		"userId":   next.UserID,
		"outcome":  string(result.Outcome),
		"enriched": result.Enriched,
	})
	return result, nil
}

func (s *ProfileService) Load(ctx context.Context, userID string) (*profile.HealthProfile, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	p := s.profiles.Load(ctx, userID)
	if p == nil {
		return nil, apperrors.NewProfileNotFoundError(userID)
	}
	return p, nil
}

// List returns every loadable profile that has an id and a gender.
func (s *ProfileService) List(ctx context.Context) []*profile.HealthProfile {
	var out []*profile.HealthProfile
	for _, id := range s.profiles.ListAllIDs(ctx) {
		p := s.profiles.Load(ctx, id)
		if p == nil || p.UserID == "" || p.Gender == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Delete removes the profile and its cached enrichment record.
func (s *ProfileService) Delete(ctx context.Context, userID string) bool {
	if !s.profiles.Delete(ctx, userID) {
		return false
	}
	if err := s.records.Delete(ctx, userID); err != nil {
		s.logger.Warn("failed to remove enrichment record", map[string]interface{}{"userId": userID, "error": err})
	}
	return true
}

// Record returns the cached enrichment record, or nil if there is none.
func (s *ProfileService) Record(ctx context.Context, userID string) (*enrichment.Record, error) {
	rec, err := s.records.Load(ctx, userID)
	if err != nil {
		return nil, apperrors.NewStorageError("load enrichment", err)
	}
	return rec, nil
}

// Corpus returns the cached enrichment text. A missing or unreadable record
// yields an empty corpus.
func (s *ProfileService) Corpus(ctx context.Context, userID string) string {
	rec, err := s.records.Load(ctx, userID)
	if err != nil {
		s.logger.Warn("no usable enrichment record, analysing without it", map[string]interface{}{"userId": userID, "error": err})
		return ""
	}
	if rec == nil {
		return ""
	}
	return rec.TotalContent
}
