package analyzefood

import "foodlens/internal/formatter"

// Input carries both package photos as data URIs or fetchable image URLs.
type Input struct {
	UserID     string `json:"userId"`
	FrontImage string `json:"frontImage"`
	BackImage  string `json:"backImage"`
	SendEmail  bool   `json:"sendEmail"`
}

type Output struct {
	FoodName        string              `json:"foodName"`
	FoodIngredients string              `json:"foodIngredients"`
	HealthAnalysis  string              `json:"healthAnalysis"`
	Sections        []formatter.Section `json:"sections"`
	SourceLinks     []string            `json:"sourceLinks"`
	UsedEnrichment  bool                `json:"usedEnrichment"`
	EmailSent       bool                `json:"emailSent"`
	EmailMessageID  string              `json:"emailMessageId,omitempty"`
}
