// Package companion answers free-text health questions. A configured text
// generation backend is tried first; the rule-based Responder is the fallback
// and is always available.
package companion

type Category string

const (
	CategoryHowAreYou      Category = "how_are_you"
	CategoryUserIdentity   Category = "user_identity"
	CategoryAgentIdentity  Category = "agent_identity"
	CategoryManageBP       Category = "manage_blood_pressure"
	CategoryManageHR       Category = "manage_heart_rate"
	CategoryManageGlucose  Category = "manage_glucose"
	CategoryManageSpO2     Category = "manage_spo2"
	CategoryManageTemp     Category = "manage_temperature"
	CategoryExercise       Category = "exercise"
	CategoryDiet           Category = "diet"
	CategoryGeneralAdvice  Category = "general_advice"
	CategoryInterpretation Category = "interpretation"
	CategoryVitalsSummary  Category = "vitals_summary"
	CategoryLookupHR       Category = "lookup_heart_rate"
	CategoryLookupBP       Category = "lookup_blood_pressure"
	CategoryLookupSpO2     Category = "lookup_spo2"
	CategoryLookupGlucose  Category = "lookup_glucose"
	CategoryLookupTemp     Category = "lookup_temperature"
	CategoryGreeting       Category = "greeting"
	CategoryQuestion       Category = "question"
	CategoryDefault        Category = "default"
)

// Randomized reports whether replies in this category are drawn from a fixed
// set rather than rendered from a single template.
func (c Category) Randomized() bool {
	switch c {
	case CategoryManageBP, CategoryManageHR, CategoryManageGlucose, CategoryManageSpO2, CategoryManageTemp,
		CategoryExercise, CategoryDiet, CategoryGeneralAdvice:
		return true
	default:
		return false
	}
}
