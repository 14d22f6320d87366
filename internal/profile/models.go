package profile

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type WeightUnit string

const (
	WeightKG  WeightUnit = "KG"
	WeightLbs WeightUnit = "lbs"
)

// Suffix is the unit as it appears in the persisted display string.
func (u WeightUnit) Suffix() string {
	if u == WeightLbs {
		return "lbs"
	}
	return "kg"
}

type HeightUnit string

const (
	HeightCM   HeightUnit = "cm"
	HeightInch HeightUnit = "inch"
)

func (u HeightUnit) Suffix() string {
	if u == HeightInch {
		return "inch"
	}
	return "cm"
}

// HealthProfile is both the saved record and the in-memory draft being edited.
// Age is derived from DateOfBirth whenever the profile is saved or loaded.
type HealthProfile struct {
	UserID               string
	DateOfBirth          time.Time
	Age                  int
	Gender               Gender
	Weight               float64
	WeightUnit           WeightUnit
	Height               float64
	HeightUnit           HeightUnit
	FoodAllergy          string
	ExistingDisease      string
	OtherHealthCondition string
	LastUpdated          time.Time
}

// ConditionLists is the part of a profile that drives web enrichment.
type ConditionLists struct {
	Allergy   string
	Disease   string
	Condition string
}

func (p *HealthProfile) Conditions() ConditionLists {
	return ConditionLists{
		Allergy:   p.FoodAllergy,
		Disease:   p.ExistingDisease,
		Condition: p.OtherHealthCondition,
	}
}

// HasConditions reports whether any of the three lists has non-blank text.
func (c ConditionLists) HasConditions() bool {
	return strings.TrimSpace(c.Allergy) != "" ||
		strings.TrimSpace(c.Disease) != "" ||
		strings.TrimSpace(c.Condition) != ""
}
