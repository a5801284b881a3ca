package companion

import "strings"

// Matching is plain substring search on the lowercased message, so short
// keywords such as "hr" or "hi" also match inside longer words.
var (
	howAreYouPhrases     = []string{"how are you"}
	userIdentityPhrases  = []string{"my name", "who am i", "know me"}
	agentIdentityPhrases = []string{"who are you", "who're you", "who'r you", "your name"}

	bloodPressureKeywords = []string{"blood pressure", "bp", "pressure"}
	heartRateKeywords     = []string{"heart rate", "heart", "hr", "pulse", "heartbeat"}
	glucoseKeywords       = []string{"glucose", "sugar", "blood sugar", "diabetes"}
	spo2Keywords          = []string{"spo2", "oxygen", "o2", "saturation"}
	temperatureKeywords   = []string{"temperature", "temp", "fever"}

	// "controll" is a common misspelling users type; it stays in the list.
	managementKeywords = []string{
		"manage", "control", "controll", "reduce", "lower", "improve", "fix",
		"how to", "what do", "what i do", "normalize", "maintain",
	}

	exerciseKeywords = []string{"exercise", "excise", "work out", "workout", "walk", "run"}
	dietKeywords     = []string{"diet", "food", "eat", "nutrition"}

	adviceKeywords = []string{
		"how to", "make it normal", "improve", "fix", "advice", "change",
		"control", "controll", "tips", "tip", "suggestion", "suggestions",
	}
	advicePhrases = []string{
		"what should i do", "what do i do", "what i do", "what can i do", "what i so", "so what i do",
	}

	interpretationKeywords = []string{
		"good", "bad", "normal", "okay", "fine", "worry", "dangerous", "safe", "indicate", "mean",
	}
	statusKeywords = []string{"vitals", "health", "data", "readings", "condition", "status"}

	// Lookup uses narrower domain lists than management does.
	heartLookupKeywords       = []string{"heart", "hr", "pulse"}
	bloodPressureLookupWords  = []string{"blood pressure", "bp"}
	spo2LookupKeywords        = []string{"oxygen", "spo2"}
	glucoseLookupKeywords     = []string{"glucose", "sugar", "diabetes"}
	temperatureLookupKeywords = []string{"temperature", "fever"}
	checkKeywords             = []string{"my", "is", "value", "check", "about", "tell"}

	greetingKeywords = []string{"hello", "hi", "hey", "good morning", "good afternoon"}
)

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
