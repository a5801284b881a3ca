package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"healthcompanion/internal/store"
	"healthcompanion/internal/vitals"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Record a vital reading",
		Long:  "Record a reading for a user. Out-of-range values also create a medium-severity alert.",
		Run:   runIngest,
	}

	cmd.Flags().StringP("user", "u", "", "Username (required)")
	cmd.Flags().StringP("type", "t", "", "Vital type, e.g. heart_rate (required)")
	cmd.Flags().Float64P("value", "v", 0, "Measured value (required)")
	cmd.Flags().String("unit", "", "Unit, e.g. bpm")

	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("value")

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	username, _ := cmd.Flags().GetString("user")
	rawType, _ := cmd.Flags().GetString("type")
	value, _ := cmd.Flags().GetFloat64("value")
	unit, _ := cmd.Flags().GetString("unit")

	cfg := loadConfig()
	s, err := openStore(cmd.Context(), cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := ingest(cmd.Context(), cmd.OutOrStdout(), s, username, rawType, value, unit, time.Now().UTC()); err != nil {
		exitErr("ingest", err)
	}
}

type ingestResult struct {
	Reading vitals.Reading `json:"reading"`
	Alert   *vitals.Alert  `json:"alert,omitempty"`
}

func ingest(ctx context.Context, w io.Writer, s store.Store, username, rawType string, value float64, unit string, at time.Time) error {
	vitalType := vitals.NormalizeType(rawType)
	if vitalType == "" {
		return fmt.Errorf("type is required")
	}
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("load %s: %w", username, err)
	}

	reading, alert := vitals.NewReading(user.ID, vitalType, value, unit, at)
	if err := s.RecordReading(ctx, &reading, alert); err != nil {
		return err
	}

	text := "recorded " + vitals.ReportLine(reading)
	if alert != nil {
		text += "\nalert: " + alert.Message
	}
	printResult(w, ingestResult{Reading: reading, Alert: alert}, text)
	return nil
}
