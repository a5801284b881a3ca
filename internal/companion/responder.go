package companion

import (
	"math/rand/v2"
	"strings"

	"healthcompanion/internal/vitals"
)

// Picker returns an index in [0, n). Replies in randomized categories are
// chosen with it.
type Picker func(n int) int

type Response struct {
	Category Category
	Text     string
}

type turn struct {
	message  string
	lowered  string
	report   string
	fullName string
}

type rule struct {
	category Category
	matches  func(t turn) bool
	reply    func(r *Responder, t turn) string
}

// Responder is the rule-based chat fallback. Rules are evaluated in order and
// the first match answers; it holds no mutable state and is safe for
// concurrent use as long as its Picker is.
type Responder struct {
	pick  Picker
	rules []rule
}

type ResponderOption func(*Responder)

func WithPicker(pick Picker) ResponderOption {
	return func(r *Responder) {
		if pick != nil {
			r.pick = pick
		}
	}
}

func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		pick:  rand.IntN,
		rules: defaultRules(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond answers message using report (as rendered by vitals.FormatReport)
// and the user's display name.
func (r *Responder) Respond(message, report, fullName string) string {
	return r.Reply(message, report, fullName).Text
}

func (r *Responder) Reply(message, report, fullName string) Response {
	t := turn{
		message:  message,
		lowered:  strings.ToLower(message),
		report:   report,
		fullName: fullName,
	}
	for _, candidate := range r.rules {
		if candidate.matches(t) {
			return Response{Category: candidate.category, Text: candidate.reply(r, t)}
		}
	}
	return Response{Category: CategoryDefault, Text: render(replyDefault, fullName)}
}

// Classify returns the category that would answer message.
func (r *Responder) Classify(message string) Category {
	t := turn{message: message, lowered: strings.ToLower(message)}
	for _, candidate := range r.rules {
		if candidate.matches(t) {
			return candidate.category
		}
	}
	return CategoryDefault
}

func (r *Responder) random(category Category, fullName string) string {
	templates := randomReplies[category]
	return render(templates[r.pick(len(templates))], fullName)
}

func defaultRules() []rule {
	return []rule{
		{CategoryHowAreYou, phrase(howAreYouPhrases), fixed(replyHowAreYou)},
		{CategoryUserIdentity, phrase(userIdentityPhrases), fixed(replyUserIdentity)},
		{CategoryAgentIdentity, phrase(agentIdentityPhrases), fixed(replyAgentIdentity)},

		{CategoryManageBP, management(bloodPressureKeywords), randomized(CategoryManageBP)},
		{CategoryManageHR, management(heartRateKeywords), randomized(CategoryManageHR)},
		{CategoryManageGlucose, management(glucoseKeywords), randomized(CategoryManageGlucose)},
		{CategoryManageSpO2, management(spo2Keywords), randomized(CategoryManageSpO2)},
		{CategoryManageTemp, management(temperatureKeywords), randomized(CategoryManageTemp)},

		{CategoryExercise, phrase(exerciseKeywords), randomized(CategoryExercise)},
		{CategoryDiet, phrase(dietKeywords), randomized(CategoryDiet)},
		{CategoryGeneralAdvice, func(t turn) bool {
			return containsAny(t.lowered, adviceKeywords) || containsAny(t.lowered, advicePhrases)
		}, randomized(CategoryGeneralAdvice)},

		{CategoryInterpretation, phrase(interpretationKeywords), replyInterpretation},
		{CategoryVitalsSummary, phrase(statusKeywords), replyVitalsSummary},

		{CategoryLookupHR, phrase(heartLookupKeywords), lookup(vitals.HeartRate, replyHeartRateValue, replyHeartRateMissing, replyHeartRateFact)},
		{CategoryLookupBP, phrase(bloodPressureLookupWords), replyBloodPressureLookup},
		{CategoryLookupSpO2, phrase(spo2LookupKeywords), lookup(vitals.SpO2, replySpO2Value, replySpO2Missing, replySpO2Fact)},
		{CategoryLookupGlucose, phrase(glucoseLookupKeywords), lookup(vitals.Glucose, replyGlucoseValue, replyGlucoseMissing, replyGlucoseFact)},
		{CategoryLookupTemp, phrase(temperatureLookupKeywords), lookup(vitals.Temperature, replyTemperatureValue, replyTemperatureMissing, replyTemperatureFact)},

		{CategoryGreeting, phrase(greetingKeywords), func(_ *Responder, t turn) string {
			greeting := ""
			if t.fullName != "" {
				greeting = " " + t.fullName
			}
			return strings.ReplaceAll(replyGreeting, "{greeting}", greeting)
		}},
		{CategoryQuestion, func(t turn) bool { return strings.Contains(t.message, "?") }, fixed(replyQuestion)},
	}
}

func phrase(keywords []string) func(turn) bool {
	return func(t turn) bool {
		return containsAny(t.lowered, keywords)
	}
}

func management(domain []string) func(turn) bool {
	return func(t turn) bool {
		return containsAny(t.lowered, domain) && containsAny(t.lowered, managementKeywords)
	}
}

func fixed(template string) func(*Responder, turn) string {
	return func(_ *Responder, t turn) string {
		return render(template, t.fullName)
	}
}

func randomized(category Category) func(*Responder, turn) string {
	return func(r *Responder, t turn) string {
		return r.random(category, t.fullName)
	}
}

func replyInterpretation(_ *Responder, t turn) string {
	switch {
	case vitals.HasNoReadings(t.report):
		return render(replyInterpretNoData, t.fullName)
	case vitals.HasAbnormal(t.report):
		return render(replyInterpretAbnormal, t.fullName)
	case vitals.HasNormal(t.report):
		return render(replyInterpretNormal, t.fullName)
	default:
		return render(replyInterpretUnknown, t.fullName)
	}
}

func replyVitalsSummary(_ *Responder, t turn) string {
	if vitals.HasNoReadings(t.report) {
		return render(replySummaryNoData, t.fullName)
	}
	if vitals.HasAbnormal(t.report) {
		return render(replySummaryAbnormalHeader, t.fullName) + t.report + replySummaryAbnormalFooter
	}
	return render(replySummaryNormalHeader, t.fullName) + t.report + replySummaryNormalFooter
}

func lookup(vitalType vitals.Type, valueTemplate, missingTemplate, factTemplate string) func(*Responder, turn) string {
	return func(_ *Responder, t turn) string {
		if !containsAny(t.lowered, checkKeywords) {
			return factTemplate
		}
		value, ok := vitals.LatestValue(t.report, vitalType)
		if !ok {
			return render(missingTemplate, t.fullName)
		}
		return strings.ReplaceAll(valueTemplate, "{value}", value)
	}
}

func replyBloodPressureLookup(_ *Responder, t turn) string {
	if !containsAny(t.lowered, checkKeywords) {
		return replyBloodPressureFact
	}
	systolic, sysOK := vitals.LatestValue(t.report, vitals.BloodPressureSystolic)
	diastolic, diaOK := vitals.LatestValue(t.report, vitals.BloodPressureDiastolic)
	if !sysOK || !diaOK {
		return render(replyBloodPressureMissing, t.fullName)
	}
	return strings.NewReplacer("{sys}", systolic, "{dia}", diastolic).Replace(replyBloodPressureValue)
}
