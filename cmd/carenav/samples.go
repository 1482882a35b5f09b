package main

import (
	"github.com/spf13/cobra"

	"github.com/zatekoja/carenavigator/backend/internal/application/services"
)

func newSamplesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the built-in sample transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd.OutOrStdout(), root.output, services.NewSampleCatalog().List())
		},
	}
}
