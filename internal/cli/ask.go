package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"healthcompanion/internal/ai"
	"healthcompanion/internal/companion"
	"healthcompanion/internal/config"
	"healthcompanion/internal/logger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the companion a question on behalf of a user",
		Long:  "Answer a message the way the chat endpoint does. --offline skips the generation backend and uses the rule responder.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAsk,
	}

	cmd.Flags().StringP("user", "u", "", "Username (required)")
	cmd.Flags().Bool("offline", false, "Use only the rule-based responder")

	cmd.MarkFlagRequired("user")

	RootCmd.AddCommand(cmd)
}

func runAsk(cmd *cobra.Command, args []string) {
	username, _ := cmd.Flags().GetString("user")
	offline, _ := cmd.Flags().GetBool("offline")
	message := strings.Join(args, " ")

	cfg := loadConfig()
	log := logger.New(cfg.LogLevel, "text")
	s, err := openStore(cmd.Context(), cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var (
		client   ai.Client
		provider = config.AIProviderNone
	)
	if !offline {
		client, provider, err = ai.New(cmd.Context(), cfg, log)
		if err != nil {
			exitErr("ai client", err)
		}
	}

	svc := companion.NewService(s, client,
		companion.WithReportLimit(cfg.ReportLimit),
		companion.WithTimeout(cfg.AITimeout()),
		companion.WithLogger(log),
		companion.WithProvider(provider),
	)
	if err := ask(cmd.Context(), cmd.OutOrStdout(), svc, username, message); err != nil {
		exitErr("ask", err)
	}
}

func ask(ctx context.Context, w io.Writer, svc *companion.Service, username, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message is required")
	}
	reply, err := svc.Chat(ctx, username, message)
	if err != nil {
		return err
	}
	printResult(w, reply, reply.Answer)
	return nil
}
