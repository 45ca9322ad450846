package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, logger, err := root.newAnalyzer()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			health, err := analyzer.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("analysis service at %s is unavailable: %w", analyzer.BaseURL(), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: %s\n", analyzer.BaseURL(), color.GreenString(health.Status))
			return nil
		},
	}
}
