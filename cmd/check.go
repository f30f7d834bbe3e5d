package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mailtrust/internal/config"
	"mailtrust/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkCommand constructs the 'check' subcommand that runs the scoring
// engine once for a single address or a piece of text and prints the
// resulting report(s) as JSON, without touching the database or the queue.
func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Scores an address (or all addresses in a text) and prints the report",
		Run: func(cmd *cobra.Command, args []string) {
			address, _ := cmd.Flags().GetString("address")
			text, _ := cmd.Flags().GetString("text")
			brand, _ := cmd.Flags().GetString("brand")
			checkDNS, _ := cmd.Flags().GetBool("dns")

			ctx := context.Background()
			if (address == "") == (text == "") {
				logger.Fatal(ctx, "exactly one of --address or --text is required")
			}

			checker := newChecker(cfg)

			var out any
			if address != "" {
				out = checker.Validate(ctx, address, brand, checkDNS)
			} else {
				out = checker.ValidateText(ctx, text, brand, checkDNS, cfg.Verifier.BatchConcurrency)
			}

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				logger.Fatal(ctx, "could not encode report", zap.Error(err))
			}

			fmt.Println(string(encoded)) //nolint: forbidigo
		},
	}

	cmd.Flags().String("address", "", "Candidate address to score")
	cmd.Flags().String("text", "", "Free-form text to extract and score addresses from")
	cmd.Flags().String("brand", "", "Expected organization name")
	cmd.Flags().Bool("dns", true, "Resolve the domain as part of scoring")

	return cmd
}
