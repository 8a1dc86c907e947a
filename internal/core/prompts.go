package core

import (
	"fmt"
	"strings"

	"triage-advisor/pkg"
)

// prompts.go holds the fixed text exchanged with the model.  The labels and
// JSON field names in PromptTemplate are what the model is instructed by, so
// they must not be reworded.

const (
	// SystemPrompt is sent as the system message of every completion.
	SystemPrompt = "You are a helpful healthcare assistant."

	// PromptTemplate is filled with gender, age, pre-existing conditions and
	// symptoms, in that order.
	PromptTemplate = `
You are a smart AI healthcare consultant. A patient has provided the following information:

Gender: %s
Age: %s
Pre-existing Conditions: %s
Symptoms: "%s"

Based on clinical protocols and triage logic, respond in VALID JSON with only these fields:
1. urgency_level: One of [Low, Moderate, High, Emergency]
2. possible_condition: A short, likely diagnosis
3. recommended_action: What steps should the patient take next?
4. suggested_medication: Any general advice or OTC meds (if applicable)

Respond only in raw JSON. Do not include text explanations or markdown formatting.
`
)

// BuildPrompt renders PromptTemplate.  Only preExisting and symptoms are
// trimmed; gender and age are used verbatim.
func BuildPrompt(gender pkg.Gender, age, preExisting, symptoms string) string {
	return fmt.Sprintf(PromptTemplate, gender, age, strings.TrimSpace(preExisting), strings.TrimSpace(symptoms))
}
