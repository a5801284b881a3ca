// Package vitals holds the vital-sign domain: reading and alert records, the
// fixed abnormality thresholds, and the plain-text report consumed by chat.
package vitals

import (
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	HeartRate              Type = "heart_rate"
	BloodPressureSystolic  Type = "blood_pressure_sys"
	BloodPressureDiastolic Type = "blood_pressure_dia"
	SpO2                   Type = "spo2"
	Glucose                Type = "glucose"
	Temperature            Type = "temperature"
)

// KnownTypes lists the types with a threshold band, in display order.
var KnownTypes = []Type{
	HeartRate,
	BloodPressureSystolic,
	BloodPressureDiastolic,
	SpO2,
	Glucose,
	Temperature,
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Reading is immutable once created; IsAbnormal is the verdict taken at
// ingestion time and is never recomputed.
type Reading struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       Type      `json:"type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Timestamp  time.Time `json:"timestamp"`
	IsAbnormal bool      `json:"is_abnormal"`
}

type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Resolved  bool      `json:"resolved"`
}

func NormalizeType(input string) Type {
	return Type(strings.ToLower(strings.TrimSpace(input)))
}

func (t Type) Known() bool {
	_, ok := thresholds[t]
	return ok
}

// NewReading stamps a reading with its abnormality verdict and, when the value
// is out of band, the medium-severity alert that must be stored with it.
func NewReading(userID string, vitalType Type, value float64, unit string, at time.Time) (Reading, *Alert) {
	evaluation := Evaluate(vitalType, value)
	reading := Reading{
		UserID:     userID,
		Type:       vitalType,
		Value:      value,
		Unit:       strings.TrimSpace(unit),
		Timestamp:  at.UTC(),
		IsAbnormal: evaluation.IsAbnormal,
	}
	if !evaluation.IsAbnormal {
		return reading, nil
	}
	return reading, &Alert{
		UserID:    userID,
		Severity:  SeverityMedium,
		Message:   evaluation.AlertMessage,
		CreatedAt: reading.Timestamp,
		Resolved:  false,
	}
}

// FormatValue renders a value the way reports and alert messages show it:
// whole numbers without a decimal part, everything else at shortest precision.
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
