package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"healthcompanion/internal/auth"
	"healthcompanion/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo users",
		Long:  "Create grandpa_joe and nurse_sarah when the users table is empty. --with-vitals also records a sample history for grandpa_joe.",
		Run:   runSeed,
	}

	cmd.Flags().Bool("with-vitals", false, "Record sample vitals for grandpa_joe")

	RootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, args []string) {
	withVitals, _ := cmd.Flags().GetBool("with-vitals")

	cfg := loadConfig()
	s, err := openStore(cmd.Context(), cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := seed(cmd.Context(), cmd.OutOrStdout(), s, auth.NewPasswordManager(), withVitals, time.Now().UTC()); err != nil {
		exitErr("seed", err)
	}
}

type seedResult struct {
	UsersCreated  bool `json:"users_created"`
	VitalsWritten int  `json:"vitals_written"`
}

func seed(ctx context.Context, w io.Writer, s store.Store, hasher store.PasswordHasher, withVitals bool, now time.Time) error {
	created, err := store.SeedDemoUsers(ctx, s, hasher)
	if err != nil {
		return err
	}
	result := seedResult{UsersCreated: created}
	if withVitals {
		result.VitalsWritten, err = store.SeedDemoVitals(ctx, s, store.DemoUsers[0].Username, now)
		if err != nil {
			return err
		}
	}

	text := "demo users already present"
	if created {
		text = fmt.Sprintf("created %d demo users (password %s)", len(store.DemoUsers), store.DemoPassword)
	}
	if withVitals {
		text += fmt.Sprintf("\nrecorded %d readings for %s", result.VitalsWritten, store.DemoUsers[0].Username)
	}
	printResult(w, result, text)
	return nil
}
