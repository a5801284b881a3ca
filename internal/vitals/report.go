package vitals

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultReportLimit = 5

	// NoReadingsReport is matched by substring in chat replies; keep it verbatim.
	NoReadingsReport = "No recent vitals found."

	AbnormalMarker = "⚠️ Abnormal"
	NormalMarker   = "✅ Normal"

	reportTimeLayout = "2006-01-02 15:04"
)

// Report lines follow the grammar
//
//	- {YYYY-MM-DD HH:MM}: {type} = {value} {unit} ({marker})
//
// Measurement renders the "{type} = {value} {unit}" part and LatestValue
// parses it back, so both sides share one definition.
func Measurement(vitalType Type, value float64, unit string) string {
	return fmt.Sprintf("%s = %s %s", vitalType, FormatValue(value), unit)
}

func ReportLine(reading Reading) string {
	marker := NormalMarker
	if reading.IsAbnormal {
		marker = AbnormalMarker
	}
	return fmt.Sprintf(
		"- %s: %s (%s)",
		reading.Timestamp.UTC().Format(reportTimeLayout),
		Measurement(reading.Type, reading.Value, reading.Unit),
		marker,
	)
}

// FormatReport renders readings (already sorted newest first) into the report
// text, keeping at most limit lines. A non-positive limit means the default.
func FormatReport(readings []Reading, limit int) string {
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	if len(readings) == 0 {
		return NoReadingsReport
	}
	if len(readings) > limit {
		readings = readings[:limit]
	}
	lines := make([]string, 0, len(readings))
	for _, reading := range readings {
		lines = append(lines, ReportLine(reading))
	}
	return strings.Join(lines, "\n")
}

var measurementPatterns = func() map[Type]*regexp.Regexp {
	patterns := make(map[Type]*regexp.Regexp, len(KnownTypes))
	for _, vitalType := range KnownTypes {
		patterns[vitalType] = measurementPattern(vitalType)
	}
	return patterns
}()

func measurementPattern(vitalType Type) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(string(vitalType)) + ` = ([\d.]+) ([^\s()]+)`)
}

// LatestValue finds the first "{type} = {value} {unit}" measurement in report
// and returns "{value} {unit}". Reports are newest first, so the first match
// is the latest reading of that type.
func LatestValue(report string, vitalType Type) (string, bool) {
	pattern, ok := measurementPatterns[vitalType]
	if !ok {
		pattern = measurementPattern(vitalType)
	}
	match := pattern.FindStringSubmatch(report)
	if match == nil {
		return "", false
	}
	return match[1] + " " + match[2], true
}

func HasNoReadings(report string) bool {
	return strings.Contains(report, "No recent vitals")
}

func HasAbnormal(report string) bool {
	return strings.Contains(report, AbnormalMarker)
}

func HasNormal(report string) bool {
	return strings.Contains(report, NormalMarker)
}
