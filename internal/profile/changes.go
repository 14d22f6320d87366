package profile

import "strings"

// NeedsEnrichment reports whether the web lookups for draft must be re-run.
// Only the three condition lists matter, compared after trimming; demographic
// edits never trigger a search. A missing previous profile always does.
func NeedsEnrichment(previous *HealthProfile, draft *HealthProfile) bool {
	if previous == nil {
		return true
	}
	return conditionsDiffer(previous, draft)
}

// HasAnyProfileChange reports whether saving draft over previous would change
// anything at all. Used to skip a save that would be a no-op.
func HasAnyProfileChange(previous *HealthProfile, draft *HealthProfile) bool {
	if previous == nil {
		return true
	}
	return !previous.DateOfBirth.Equal(draft.DateOfBirth) ||
		previous.Gender != draft.Gender ||
		previous.Weight != draft.Weight ||
		previous.WeightUnit != draft.WeightUnit ||
		previous.Height != draft.Height ||
		previous.HeightUnit != draft.HeightUnit ||
		conditionsDiffer(previous, draft)
}

func conditionsDiffer(a, b *HealthProfile) bool {
	return strings.TrimSpace(a.FoodAllergy) != strings.TrimSpace(b.FoodAllergy) ||
		strings.TrimSpace(a.ExistingDisease) != strings.TrimSpace(b.ExistingDisease) ||
		strings.TrimSpace(a.OtherHealthCondition) != strings.TrimSpace(b.OtherHealthCondition)
}
