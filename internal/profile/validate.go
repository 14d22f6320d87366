package profile

import (
	"fmt"
	"strings"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/validation"
)

var draftSchema = validation.MustCompile(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["userId", "gender", "weight", "weightUnit", "height", "heightUnit"],
  "properties": {
    "userId":               {"type": "string", "minLength": 1},
    "gender":               {"type": "string", "enum": ["Male", "Female", "Other"]},
    "weight":               {"type": "number", "exclusiveMinimum": 0},
    "weightUnit":           {"type": "string", "enum": ["KG", "lbs"]},
    "height":               {"type": "number", "exclusiveMinimum": 0},
    "heightUnit":           {"type": "string", "enum": ["cm", "inch"]},
    "foodAllergy":          {"type": "string", "pattern": "^[a-zA-Z0-9\\s,.-]*$"},
    "existingDisease":      {"type": "string", "pattern": "^[a-zA-Z0-9\\s,.-]*$"},
    "otherHealthCondition": {"type": "string", "pattern": "^[a-zA-Z0-9\\s,.-]*$"}
  }
}`)

// ValidateDraft checks a draft before anything is written or searched.
func ValidateDraft(p *HealthProfile) error {
	if p == nil {
		return apperrors.NewValidationError("profile is required")
	}
	if strings.TrimSpace(p.UserID) == "" {
		return apperrors.NewValidationError("user id is required")
	}

	res, err := draftSchema.Validate(map[string]interface{}{
		"userId":               p.UserID,
		"gender":               string(p.Gender),
		"weight":               p.Weight,
		"weightUnit":           string(p.WeightUnit),
		"height":               p.Height,
		"heightUnit":           string(p.HeightUnit),
		"foodAllergy":          p.FoodAllergy,
		"existingDisease":      p.ExistingDisease,
		"otherHealthCondition": p.OtherHealthCondition,
	})
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if !res.Valid {
		return apperrors.NewValidationError(strings.Join(res.GetErrorMessages(), "; "))
	}

	if p.DateOfBirth.IsZero() {
		return apperrors.NewValidationError("date of birth is required")
	}
	return nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

// Summary is the multi-line profile overview shown after create and load.
func Summary(p *HealthProfile) string {
	return fmt.Sprintf(
		"User ID: %s\nAge: %d years\nGender: %s\nWeight: %s\nHeight: %s\n\nFood Allergies: %s\nExisting Diseases: %s\nOther Health Conditions: %s",
		p.UserID,
		p.Age,
		p.Gender,
		FormatMeasure(p.Weight, p.WeightUnit.Suffix()),
		FormatMeasure(p.Height, p.HeightUnit.Suffix()),
		orNone(p.FoodAllergy),
		orNone(p.ExistingDisease),
		orNone(p.OtherHealthCondition),
	)
}
