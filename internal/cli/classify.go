package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"healthcompanion/internal/vitals"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify TYPE VALUE",
		Short: "Check a value against the normal range",
		Long:  "Classify a single reading without storing it. Unknown types are always normal.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := classify(cmd.OutOrStdout(), args[0], args[1]); err != nil {
				exitErr("classify", err)
			}
		},
	}

	RootCmd.AddCommand(cmd)
}

type classifyResult struct {
	Type       vitals.Type `json:"type"`
	Value      float64     `json:"value"`
	IsAbnormal bool        `json:"is_abnormal"`
	Message    string      `json:"alert_message,omitempty"`
	NormalMin  *float64    `json:"normal_min,omitempty"`
	NormalMax  *float64    `json:"normal_max,omitempty"`
}

func classify(w io.Writer, rawType, rawValue string) error {
	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return fmt.Errorf("value %q is not a number", rawValue)
	}
	vitalType := vitals.NormalizeType(rawType)
	evaluation := vitals.Evaluate(vitalType, value)

	text := fmt.Sprintf("%s = %s: normal", vitalType, vitals.FormatValue(value))
	if evaluation.IsAbnormal {
		text = fmt.Sprintf("%s = %s: %s", vitalType, vitals.FormatValue(value), evaluation.AlertMessage)
	}
	result := classifyResult{
		Type:       vitalType,
		Value:      value,
		IsAbnormal: evaluation.IsAbnormal,
		Message:    evaluation.AlertMessage,
	}
	if lo, hi, ok := vitals.NormalRange(vitalType); ok {
		result.NormalMin = finite(lo)
		result.NormalMax = finite(hi)
	}
	printResult(w, result, text)
	return nil
}

// finite drops open band sides, which JSON cannot encode.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) {
		return nil
	}
	return &v
}
