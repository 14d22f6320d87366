package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedsEnrichment(t *testing.T) {
	base := func() *HealthProfile {
		return &HealthProfile{
			UserID:      "u",
			DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			Gender:      GenderMale,
			Weight:      70,
			WeightUnit:  WeightKG,
			Height:      175,
			HeightUnit:  HeightCM,
		}
	}

	tests := []struct {
		name   string
		mutate func(p *HealthProfile)
		want   bool
	}{
		{"identical", func(p *HealthProfile) {}, false},
		{"weight only", func(p *HealthProfile) { p.Weight = 80 }, false},
		{"demographics only", func(p *HealthProfile) {
			p.Gender = GenderOther
			p.HeightUnit = HeightInch
			p.DateOfBirth = p.DateOfBirth.AddDate(1, 0, 0)
		}, false},
		{"whitespace only", func(p *HealthProfile) { p.FoodAllergy = "   " }, false},
		{"allergy added", func(p *HealthProfile) { p.FoodAllergy = "peanut" }, true},
		{"disease added", func(p *HealthProfile) { p.ExistingDisease = "gout" }, true},
		{"condition added", func(p *HealthProfile) { p.OtherHealthCondition = "pregnancy" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := base()
			tt.mutate(draft)
			assert.Equal(t, tt.want, NeedsEnrichment(base(), draft))
		})
	}

	t.Run("no previous profile", func(t *testing.T) {
		assert.True(t, NeedsEnrichment(nil, base()))
	})
}

func TestNeedsEnrichment_TrimInsensitive(t *testing.T) {
	prev := &HealthProfile{FoodAllergy: "peanut", ExistingDisease: "gout, asthma", OtherHealthCondition: "x"}
	draft := &HealthProfile{FoodAllergy: "  peanut\n", ExistingDisease: "gout, asthma  ", OtherHealthCondition: " x"}
	assert.False(t, NeedsEnrichment(prev, draft))
	assert.False(t, HasAnyProfileChange(prev, draft))
}

func TestHasAnyProfileChange(t *testing.T) {
	base := func() *HealthProfile {
		return &HealthProfile{
			DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			Gender:      GenderFemale,
			Weight:      60,
			WeightUnit:  WeightKG,
			Height:      160,
			HeightUnit:  HeightCM,
			FoodAllergy: "milk",
		}
	}

	tests := []struct {
		name   string
		mutate func(p *HealthProfile)
		want   bool
	}{
		{"identical", func(p *HealthProfile) {}, false},
		{"same instant in another zone", func(p *HealthProfile) { p.DateOfBirth = p.DateOfBirth.In(time.FixedZone("X", 3600)) }, false},
		{"dob", func(p *HealthProfile) { p.DateOfBirth = p.DateOfBirth.AddDate(0, 0, 1) }, true},
		{"gender", func(p *HealthProfile) { p.Gender = GenderOther }, true},
		{"weight value", func(p *HealthProfile) { p.Weight = 60.5 }, true},
		{"weight unit", func(p *HealthProfile) { p.WeightUnit = WeightLbs }, true},
		{"height value", func(p *HealthProfile) { p.Height = 161 }, true},
		{"height unit", func(p *HealthProfile) { p.HeightUnit = HeightInch }, true},
		{"allergy", func(p *HealthProfile) { p.FoodAllergy = "milk, egg" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := base()
			tt.mutate(draft)
			assert.Equal(t, tt.want, HasAnyProfileChange(base(), draft))
		})
	}

	assert.True(t, HasAnyProfileChange(nil, base()))
}
