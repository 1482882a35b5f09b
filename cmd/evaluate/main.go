// Package main runs the analysis pipeline against a labeled golden transcript set and prints a scorecard.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zatekoja/carenavigator/backend/internal/application/llm"
	"github.com/zatekoja/carenavigator/backend/internal/application/services"
	"github.com/zatekoja/carenavigator/backend/internal/evaluation"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
	"github.com/zatekoja/carenavigator/backend/pkg/config"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
	"github.com/zatekoja/carenavigator/backend/pkg/secrets"
)

const defaultGoldenPath = "config/golden_transcripts.yaml"

type options struct {
	goldenPath    string
	minConfidence float64
	minUrgency    float64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "evaluate",
		Short:         "Score the analysis pipeline against golden transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.goldenPath, "golden", defaultGoldenPath, "Path to the golden transcript set (json or yaml)")
	cmd.Flags().Float64Var(&opts.minConfidence, "min-confidence", 0.6, "Flag intent results below this confidence")
	cmd.Flags().Float64Var(&opts.minUrgency, "min-urgency-accuracy", 0, "Fail when urgency accuracy is below this value")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	if _, err := secrets.Apply(ctx, secrets.VaultConfigFromEnv(), nil); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	observability.InitLogger("carenav-evaluate", cfg.Log.Env, cfg.Log.Level)

	if !cfg.OpenAI.Configured() {
		return apperrors.NewConfigurationError("OPENAI_API_KEY is not set")
	}
	client, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		return err
	}
	pipeline := services.NewPipelineService(cfg.OpenAI, llm.NewSchemaInvoker(client), nil)

	cases, err := loadCases(opts.goldenPath)
	if err != nil {
		return err
	}

	log.Info().
		Str("golden", opts.goldenPath).
		Int("cases", len(cases)).
		Str("model", pipeline.Model()).
		Msg("Starting evaluation")

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{MinIntentConfidence: opts.minConfidence})
	summary, err := evaluation.NewRunner(pipeline, guardrails).Run(ctx, cases)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if summary.UrgencyAccuracy < opts.minUrgency {
		return fmt.Errorf("urgency accuracy %.2f below threshold %.2f", summary.UrgencyAccuracy, opts.minUrgency)
	}
	return nil
}

// loadCases reads and validates the golden set at path, taken as given.
func loadCases(path string) ([]evaluation.GoldenCase, error) {
	cases, err := evaluation.LoadGoldenCases(path)
	if err != nil {
		return nil, err
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		return nil, fmt.Errorf("invalid golden set %s: %w", path, err)
	}
	return cases, nil
}
