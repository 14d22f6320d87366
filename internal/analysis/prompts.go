package analysis

import (
	"fmt"

	"foodlens/internal/profile"
)

const (
	identityMaxTokens    = 500
	ingredientsMaxTokens = 1000
	healthMaxTokens      = 1500
)

const identitySystem = "You are a food investigator. Your job is to identify a food product and what kind of product it is."

const identityPrompt = `Look only at the food product in the image and ignore everything else.
If the image shows no food product, answer exactly 'no food product present'.
Otherwise return:
1. The name of the product
2. The type of food product
3. Any health claim the product makes
Do not describe the image or add anything else.`

const ingredientsSystem = "You are a food investigator. Your job is to read the ingredients of a food product."

const ingredientsPrompt = `Look only at the food product in the image and ignore everything else.
Read every section of the label and list all ingredients and nutrients it mentions.
If the image shows no food product, answer exactly 'no food product present'.
Return only the ingredients and nutrients, with no description of the image.`

const healthSystem = `You are a dietitian. You explain whether the ingredients of a food product are good for a patient's health.
When the patient has an existing disease, health condition or food allergy, correlate the ingredients and nutrients with it and state the benefits and drawbacks of eating the product.`

// healthPrompt builds the correlation request from the saved profile, both
// extracted texts and the cached web corpus.
func healthPrompt(p *profile.HealthProfile, foodName, ingredients, corpus string) string {
	return fmt.Sprintf(`The ingredients present in the food are: %s

The patient profile is age = %d, gender = %s, height = %s, weight = %s, food allergy = %s.
Existing diseases: %s. Other health conditions: %s.

Dietary guidance collected from the web for these conditions follows. Use it as guidelines and cite which statement came from which page.
%s

Tell the patient, in separate sections:
1. If there is any difference between the claim the product makes on the front (%s) and the ingredients on the back, say so clearly.
2. What is good about having this food?
3. What is bad about having this food?

Keep it short, concise and professional.
Do not include a summary table and do not use markdown.
List all references at the end with full https:// links.
End with a caution to consult a doctor or dietitian for any health complications or serious health issues.
The answer is shown as plain text on a small screen.`,
		ingredients,
		p.Age,
		p.Gender,
		profile.FormatMeasure(p.Height, p.HeightUnit.Suffix()),
		profile.FormatMeasure(p.Weight, p.WeightUnit.Suffix()),
		p.FoodAllergy,
		p.ExistingDisease,
		p.OtherHealthCondition,
		corpus,
		foodName,
	)
}
