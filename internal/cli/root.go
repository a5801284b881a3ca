// Package cli implements the companionctl operator commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"healthcompanion/internal/config"
	"healthcompanion/internal/store"
)

var (
	dbURL      string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "companionctl",
	Short: "Operate the health companion backend",
	Long:  "Seed users, record vitals, print reports and ask the companion questions against the configured database.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbURL, "db", "d", "", "Database URL (default: $DATABASE_URL or sqlite://./data/companion.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

func loadConfig() config.Config {
	cfg := config.Load()
	if strings.TrimSpace(dbURL) != "" {
		cfg.DatabaseURL = strings.TrimSpace(dbURL)
	}
	return cfg
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	return store.Open(ctx, cfg.DatabaseURL)
}

// printResult writes v as indented JSON in json format, text otherwise.
func printResult(w io.Writer, v any, text string) {
	if formatFlag == "json" {
		b, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(w, string(b))
		return
	}
	fmt.Fprintln(w, text)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
