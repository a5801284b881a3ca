package vitals

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleReadings(n int) []Reading {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	readings := make([]Reading, 0, n)
	for i := 0; i < n; i++ {
		readings = append(readings, Reading{
			Type:      HeartRate,
			Value:     float64(60 + i),
			Unit:      "bpm",
			Timestamp: base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return readings
}

func TestFormatReportEmpty(t *testing.T) {
	if got := FormatReport(nil, 5); got != "No recent vitals found." {
		t.Fatalf("unexpected empty report %q", got)
	}
	if got := FormatReport([]Reading{}, 0); got != NoReadingsReport {
		t.Fatalf("unexpected empty report %q", got)
	}
}

func TestFormatReportSingleReading(t *testing.T) {
	readings := []Reading{{
		Type:      "heart_rate",
		Value:     72,
		Unit:      "bpm",
		Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}}
	want := "- 2024-01-01 08:00: heart_rate = 72 bpm (✅ Normal)"
	if got := FormatReport(readings, 5); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatReportAbnormalMarkerAndDecimals(t *testing.T) {
	readings := []Reading{{
		Type:       Temperature,
		Value:      101.3,
		Unit:       "°F",
		Timestamp:  time.Date(2024, 3, 9, 21, 5, 0, 0, time.FixedZone("EST", -5*60*60)),
		IsAbnormal: true,
	}}
	want := "- 2024-03-10 02:05: temperature = 101.3 °F (⚠️ Abnormal)"
	if got := FormatReport(readings, 5); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatReportTruncatesKeepingNewestFirst(t *testing.T) {
	readings := sampleReadings(8)
	report := FormatReport(readings, 3)
	lines := strings.Split(report, "\n")

	want := []string{
		"- 2024-01-01 08:00: heart_rate = 60 bpm (✅ Normal)",
		"- 2024-01-01 07:00: heart_rate = 61 bpm (✅ Normal)",
		"- 2024-01-01 06:00: heart_rate = 62 bpm (✅ Normal)",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("report lines mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatReportNeverExceedsLimit(t *testing.T) {
	for _, limit := range []int{1, 2, 5, 10} {
		for _, n := range []int{1, 4, 5, 12} {
			lines := strings.Split(FormatReport(sampleReadings(n), limit), "\n")
			want := n
			if want > limit {
				want = limit
			}
			if len(lines) != want {
				t.Fatalf("limit=%d n=%d: expected %d lines, got %d", limit, n, want, len(lines))
			}
		}
	}
	if lines := strings.Split(FormatReport(sampleReadings(9), 0), "\n"); len(lines) != DefaultReportLimit {
		t.Fatalf("expected default limit of %d lines, got %d", DefaultReportLimit, len(lines))
	}
}

func TestLatestValueReadsFormattedReport(t *testing.T) {
	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	report := FormatReport([]Reading{
		{Type: HeartRate, Value: 110, Unit: "bpm", Timestamp: at, IsAbnormal: true},
		{Type: BloodPressureSystolic, Value: 128, Unit: "mmHg", Timestamp: at.Add(-time.Minute)},
		{Type: BloodPressureDiastolic, Value: 82, Unit: "mmHg", Timestamp: at.Add(-2 * time.Minute)},
		{Type: SpO2, Value: 97, Unit: "%", Timestamp: at.Add(-3 * time.Minute)},
		{Type: Temperature, Value: 98.6, Unit: "°F", Timestamp: at.Add(-4 * time.Minute)},
		{Type: HeartRate, Value: 70, Unit: "bpm", Timestamp: at.Add(-5 * time.Minute)},
	}, 10)

	cases := []struct {
		vitalType Type
		want      string
	}{
		{HeartRate, "110 bpm"},
		{BloodPressureSystolic, "128 mmHg"},
		{BloodPressureDiastolic, "82 mmHg"},
		{SpO2, "97 %"},
		{Temperature, "98.6 °F"},
	}
	for _, tc := range cases {
		got, ok := LatestValue(report, tc.vitalType)
		if !ok {
			t.Fatalf("expected %s in report:\n%s", tc.vitalType, report)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.vitalType, tc.want, got)
		}
	}

	if _, ok := LatestValue(report, Glucose); ok {
		t.Fatalf("expected glucose to be missing")
	}
	if _, ok := LatestValue(NoReadingsReport, HeartRate); ok {
		t.Fatalf("expected no value in the empty report")
	}
}

func TestMeasurementRoundTripsThroughGrammar(t *testing.T) {
	for _, vitalType := range KnownTypes {
		line := "- 2024-01-01 08:00: " + Measurement(vitalType, 123.45, "unit") + " (" + NormalMarker + ")"
		got, ok := LatestValue(line, vitalType)
		if !ok || got != "123.45 unit" {
			t.Fatalf("%s: expected 123.45 unit, got %q ok=%v", vitalType, got, ok)
		}
	}
	if got, ok := LatestValue("weight = 80 kg", "weight"); !ok || got != "80 kg" {
		t.Fatalf("expected ad-hoc type extraction, got %q ok=%v", got, ok)
	}
}

func TestReportMarkers(t *testing.T) {
	report := strings.Join([]string{
		"- 2024-01-01 08:00: heart_rate = 72 bpm (✅ Normal)",
		"- 2024-01-01 07:00: spo2 = 91 % (⚠️ Abnormal)",
	}, "\n")
	if !HasAbnormal(report) || !HasNormal(report) {
		t.Fatalf("expected both markers to be detected")
	}
	if HasNoReadings(report) {
		t.Fatalf("did not expect the no-data sentinel")
	}
	if !HasNoReadings(NoReadingsReport) {
		t.Fatalf("expected the no-data sentinel")
	}
}
