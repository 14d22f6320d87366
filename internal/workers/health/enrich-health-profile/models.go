package enrichhealthprofile

// Input mirrors the profile form. dateOfBirth is YYYY-MM-DD or RFC 3339.
type Input struct {
	UserID               string  `json:"userId"`
	DateOfBirth          string  `json:"dateOfBirth"`
	Gender               string  `json:"gender"`
	Weight               float64 `json:"weight"`
	WeightUnit           string  `json:"weightUnit"`
	Height               float64 `json:"height"`
	HeightUnit           string  `json:"heightUnit"`
	FoodAllergy          string  `json:"foodAllergy"`
	ExistingDisease      string  `json:"existingDisease"`
	OtherHealthCondition string  `json:"otherHealthCondition"`
	Editing              bool    `json:"editing"`
}

type Output struct {
	ProfileOutcome     string `json:"profileOutcome"`
	Age                int    `json:"age"`
	Enriched           bool   `json:"enriched"`
	TotalConditions    int    `json:"totalConditions"`
	SuccessfulSearches int    `json:"successfulSearches"`
	EnrichmentWarning  string `json:"enrichmentWarning,omitempty"`
}
