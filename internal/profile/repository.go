package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"foodlens/internal/common/logger"
	"foodlens/internal/store"
)

const keyPrefix = "profile_"

// Key is the store key holding a user's profile.
func Key(userID string) string {
	return keyPrefix + userID
}

// storedProfile is the persisted layout. Weight and height are kept as
// display strings ("70 kg") next to their unit.
type storedProfile struct {
	UserID               string `json:"userID"`
	DateOfBirth          string `json:"dateOfBirth"`
	Age                  int    `json:"age"`
	Gender               string `json:"gender"`
	Weight               string `json:"weight"`
	WeightUnit           string `json:"weightUnit"`
	Height               string `json:"height"`
	HeightUnit           string `json:"heightUnit"`
	FoodAllergy          string `json:"foodAllergy"`
	ExistingDisease      string `json:"existingDisease"`
	OtherHealthCondition string `json:"otherHealthCondition"`
	LastUpdated          string `json:"lastUpdated"`
}

// Repository is best-effort CRUD over profiles. Store failures are logged and
// reported as false/nil/empty, never returned.
type Repository struct {
	kv     store.KeyValueStore
	logger logger.Logger
	now    func() time.Time
}

func NewRepository(kv store.KeyValueStore, log logger.Logger) *Repository {
	return &Repository{
		kv:     kv,
		logger: logger.Component(log, "profile-repository"),
		now:    time.Now,
	}
}

func (r *Repository) Save(ctx context.Context, p *HealthProfile) bool {
	if p == nil || p.UserID == "" {
		r.logger.Warn("refusing to save profile without user id", nil)
		return false
	}

	data, err := json.Marshal(toStored(p, r.now()))
	if err != nil {
		r.logger.Error("failed to encode profile", map[string]interface{}{"userId": p.UserID, "error": err})
		return false
	}

	if err := r.kv.Set(ctx, Key(p.UserID), string(data)); err != nil {
		r.logger.Error("failed to save profile", map[string]interface{}{"userId": p.UserID, "error": err})
		return false
	}
	return true
}

func (r *Repository) Load(ctx context.Context, userID string) *HealthProfile {
	raw, err := r.kv.Get(ctx, Key(userID))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		r.logger.Error("failed to load profile", map[string]interface{}{"userId": userID, "error": err})
		return nil
	}

	var sp storedProfile
	if err := json.Unmarshal([]byte(raw), &sp); err != nil {
		r.logger.Error("corrupt profile record", map[string]interface{}{"userId": userID, "error": err})
		return nil
	}

	p, err := fromStored(&sp, r.now())
	if err != nil {
		r.logger.Error("corrupt profile record", map[string]interface{}{"userId": userID, "error": err})
		return nil
	}
	return p
}

func (r *Repository) Exists(ctx context.Context, userID string) bool {
	_, err := r.kv.Get(ctx, Key(userID))
	if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		r.logger.Error("failed to check profile", map[string]interface{}{"userId": userID, "error": err})
	}
	return err == nil
}

func (r *Repository) ListAllIDs(ctx context.Context) []string {
	keys, err := r.kv.ListKeys(ctx)
	if err != nil {
		r.logger.Error("failed to list profiles", map[string]interface{}{"error": err})
		return []string{}
	}

	ids := []string{}
	for _, k := range keys {
		if strings.HasPrefix(k, keyPrefix) {
			ids = append(ids, strings.TrimPrefix(k, keyPrefix))
		}
	}
	return ids
}

// Delete removes the profile. A user id that was never saved yields false.
func (r *Repository) Delete(ctx context.Context, userID string) bool {
	if !r.Exists(ctx, userID) {
		return false
	}
	if err := r.kv.Delete(ctx, Key(userID)); err != nil {
		r.logger.Error("failed to delete profile", map[string]interface{}{"userId": userID, "error": err})
		return false
	}
	return true
}

func toStored(p *HealthProfile, now time.Time) *storedProfile {
	sp := &storedProfile{
		UserID:               p.UserID,
		DateOfBirth:          p.DateOfBirth.UTC().Format(time.RFC3339Nano),
		Age:                  CalculateAge(p.DateOfBirth, now).Years,
		Gender:               string(p.Gender),
		Weight:               FormatMeasure(p.Weight, p.WeightUnit.Suffix()),
		WeightUnit:           string(p.WeightUnit),
		Height:               FormatMeasure(p.Height, p.HeightUnit.Suffix()),
		HeightUnit:           string(p.HeightUnit),
		FoodAllergy:          p.FoodAllergy,
		ExistingDisease:      p.ExistingDisease,
		OtherHealthCondition: p.OtherHealthCondition,
	}
	if !p.LastUpdated.IsZero() {
		sp.LastUpdated = p.LastUpdated.UTC().Format(time.RFC3339Nano)
	}
	return sp
}

func fromStored(sp *storedProfile, now time.Time) (*HealthProfile, error) {
	p := &HealthProfile{
		UserID:               sp.UserID,
		Gender:               Gender(sp.Gender),
		WeightUnit:           WeightUnit(sp.WeightUnit),
		HeightUnit:           HeightUnit(sp.HeightUnit),
		FoodAllergy:          sp.FoodAllergy,
		ExistingDisease:      sp.ExistingDisease,
		OtherHealthCondition: sp.OtherHealthCondition,
	}

	dob, err := time.Parse(time.RFC3339Nano, sp.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("dateOfBirth: %w", err)
	}
	p.DateOfBirth = dob
	p.Age = CalculateAge(dob, now).Years

	if sp.LastUpdated != "" {
		if p.LastUpdated, err = time.Parse(time.RFC3339Nano, sp.LastUpdated); err != nil {
			return nil, fmt.Errorf("lastUpdated: %w", err)
		}
	}

	if p.Weight, err = ParseMeasure(sp.Weight); err != nil {
		return nil, fmt.Errorf("weight: %w", err)
	}
	if p.Height, err = ParseMeasure(sp.Height); err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}

	// records written without explicit units carry them in the display string
	if p.WeightUnit == "" {
		p.WeightUnit = WeightKG
		if strings.HasSuffix(sp.Weight, "lbs") {
			p.WeightUnit = WeightLbs
		}
	}
	if p.HeightUnit == "" {
		p.HeightUnit = HeightCM
		if strings.HasSuffix(sp.Height, "inch") {
			p.HeightUnit = HeightInch
		}
	}
	return p, nil
}

// FormatMeasure renders a value with its unit, e.g. "70 kg".
func FormatMeasure(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + unit
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// ParseMeasure extracts the numeric part of a display string such as "70.5 kg".
func ParseMeasure(s string) (float64, error) {
	digits := nonNumeric.ReplaceAllString(s, "")
	if digits == "" {
		return 0, nil
	}
	return strconv.ParseFloat(digits, 64)
}
