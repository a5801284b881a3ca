package vitals

import (
	"fmt"
	"math"
)

type Evaluation struct {
	IsAbnormal   bool   `json:"is_abnormal"`
	AlertMessage string `json:"alert_message,omitempty"`
}

type band struct {
	min     float64
	max     float64
	message string
}

// Inclusive bounds are normal. Open sides use infinities.
var thresholds = map[Type]band{
	HeartRate:              {min: 50, max: 100, message: "Abnormal HR detected (%s bpm)"},
	BloodPressureSystolic:  {min: 90, max: 140, message: "Abnormal BP (Sys) detected (%s mmHg)"},
	BloodPressureDiastolic: {min: 60, max: 90, message: "Abnormal BP (Dia) detected (%s mmHg)"},
	SpO2:                   {min: 95, max: math.Inf(1), message: "Low SpO2 detected (%s%%)"},
	Glucose:                {min: math.Inf(-1), max: 140, message: "High Glucose detected (%s mg/dL)"},
	Temperature:            {min: math.Inf(-1), max: 99.5, message: "High Temperature detected (%s°F)"},
}

// Classify reports whether value falls outside the normal band for vitalType.
// Unknown types are always normal.
func Classify(vitalType Type, value float64) (bool, string) {
	limits, ok := thresholds[vitalType]
	if !ok {
		return false, ""
	}
	if math.IsNaN(value) || (value >= limits.min && value <= limits.max) {
		return false, ""
	}
	return true, fmt.Sprintf(limits.message, FormatValue(value))
}

func Evaluate(vitalType Type, value float64) Evaluation {
	abnormal, message := Classify(vitalType, value)
	return Evaluation{IsAbnormal: abnormal, AlertMessage: message}
}

// NormalRange returns the inclusive band for a known type. Open sides are
// reported as infinities.
func NormalRange(vitalType Type) (float64, float64, bool) {
	limits, ok := thresholds[vitalType]
	if !ok {
		return 0, 0, false
	}
	return limits.min, limits.max, true
}
