package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zatekoja/carenavigator/backend/internal/application/services"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

type analyzeOptions struct {
	file    string
	text    string
	sample  string
	channel string
	debug   bool
}

func newAnalyzeCommand(root *rootOptions, load func() (analyzer, string, error)) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a transcript through intent, triage, routing and documentation",
		Long: `Run a transcript through the four-stage analysis pipeline and print the result.

Provide the transcript with exactly one of --file (use - for stdin), --text or --sample.
Requires OPENAI_API_KEY in the environment.`,
		Example: `  carenav analyze --sample symptoms_er
  carenav analyze --text "I need a refill on my lisinopril" -o yaml
  cat call.txt | carenav analyze --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := opts.resolve(cmd.InOrStdin())
			if err != nil {
				return err
			}

			pipeline, model, err := load()
			if err != nil {
				return err
			}
			log.Debug().Str("model", model).Int("chars", len(input.Transcript)).Msg("running analysis")

			resp, err := pipeline.Analyze(cmd.Context(), input)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), root.output, resp)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the transcript from a file (- for stdin)")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "Transcript text")
	cmd.Flags().StringVarP(&opts.sample, "sample", "s", "", "Use a built-in sample transcript (see 'carenav samples')")
	cmd.Flags().StringVar(&opts.channel, "channel", "", "Contact channel: phone or chat")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log each stage result (use with --verbose)")
	cmd.MarkFlagsMutuallyExclusive("file", "text", "sample")
	cmd.MarkFlagsOneRequired("file", "text", "sample")

	return cmd
}

func (o *analyzeOptions) resolve(stdin io.Reader) (entities.AnalysisInput, error) {
	input := entities.AnalysisInput{
		Channel: entities.Channel(o.channel),
		Debug:   o.debug,
	}
	if !input.Channel.IsValid() {
		return input, fmt.Errorf("channel must be one of: phone, chat")
	}

	switch {
	case o.sample != "":
		sample, ok := services.NewSampleCatalog().Get(o.sample)
		if !ok {
			return input, fmt.Errorf("unknown sample %q", o.sample)
		}
		input.Transcript = sample.Transcript
	case o.file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return input, fmt.Errorf("failed to read stdin: %w", err)
		}
		input.Transcript = string(data)
	case o.file != "":
		data, err := os.ReadFile(o.file)
		if err != nil {
			return input, fmt.Errorf("failed to read transcript: %w", err)
		}
		input.Transcript = string(data)
	default:
		input.Transcript = o.text
	}
	return input, nil
}
