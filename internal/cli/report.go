package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"healthcompanion/internal/companion"
	"healthcompanion/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a user's recent vitals report",
		Run:   runReport,
	}

	cmd.Flags().StringP("user", "u", "", "Username (required)")
	cmd.Flags().IntP("limit", "l", 0, "Maximum lines (default: $REPORT_LIMIT)")

	cmd.MarkFlagRequired("user")

	RootCmd.AddCommand(cmd)
}

func runReport(cmd *cobra.Command, args []string) {
	username, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := loadConfig()
	if limit <= 0 {
		limit = cfg.ReportLimit
	}
	s, err := openStore(cmd.Context(), cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := report(cmd.Context(), cmd.OutOrStdout(), s, username, limit); err != nil {
		exitErr("report", err)
	}
}

func report(ctx context.Context, w io.Writer, s store.Store, username string, limit int) error {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("load %s: %w", username, err)
	}
	text, err := companion.NewService(s, nil).Report(ctx, user, limit)
	if err != nil {
		return err
	}
	printResult(w, map[string]string{"username": user.Username, "report": text}, text)
	return nil
}
