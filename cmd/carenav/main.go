// Package main provides the carenav CLI, which runs call transcripts through the analysis pipeline locally.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
	"github.com/zatekoja/carenavigator/backend/pkg/config"
	"github.com/zatekoja/carenavigator/backend/pkg/secrets"
)

type rootOptions struct {
	output  string
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "carenav",
		Short:         "Analyze healthcare call transcripts",
		Long:          "carenav classifies intent, triages urgency, routes and documents call-center transcripts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != outputJSON && opts.output != outputYAML {
				return fmt.Errorf("unsupported output format %q (use json or yaml)", opts.output)
			}
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			observability.InitLogger("carenav", "development", level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputJSON, "Output format: json or yaml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	cmd.AddCommand(newAnalyzeCommand(opts, loadPipeline))
	cmd.AddCommand(newSamplesCommand(opts))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadPipeline builds the pipeline from environment configuration.
func loadPipeline() (analyzer, string, error) {
	if _, err := secrets.Apply(context.Background(), secrets.VaultConfigFromEnv(), nil); err != nil {
		return nil, "", err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	return newPipeline(cfg)
}
