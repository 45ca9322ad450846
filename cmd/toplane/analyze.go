package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/rahul4469/toplane-guide/internal/formatter"
	"github.com/rahul4469/toplane-guide/internal/models"
	"github.com/rahul4469/toplane-guide/internal/services"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	*rootOptions
	version string
	file    string
	output  string
}

func NewAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "analyze [flags]",
		Short: "Analyze a patch for top lane",
		Long: `Request the analysis of a patch and print it.

Examples:
  # Analyze the most recent patch
  toplane analyze

  # Analyze a specific patch
  toplane analyze --version 26.3

  # Analyze patch notes saved locally (text or HTML)
  toplane analyze --version 15.24 --file patch-15-24.html

  # Machine-readable output
  toplane analyze -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", models.LatestVersion, `Patch version: "latest" or major.minor such as 26.3`)
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Patch notes file to analyze instead of the official page")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatter.FormatHuman, "Output format ("+strings.Join(formatter.Formats, ", ")+")")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	// Validate inputs before touching the network
	if !formatter.ValidFormat(opts.output) {
		return fmt.Errorf("unknown output format %q (use %s)", opts.output, strings.Join(formatter.Formats, ", "))
	}
	version, err := models.ParseVersion(opts.version)
	if err != nil {
		return err
	}

	var rawContent string
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("failed to read patch notes: %w", err)
		}
		rawContent, err = services.PreparePatchNotes(string(data))
		if err != nil {
			return err
		}
		if rawContent == "" {
			return fmt.Errorf("patch notes file %s is empty", opts.file)
		}
	}

	analyzer, logger, err := opts.newAnalyzer()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	human := opts.output == formatter.FormatHuman
	if human {
		printAnalyzeHeader(cmd, analyzer.BaseURL(), version, opts.file, len(rawContent))
	}

	// Create spinner for visual feedback
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = fmt.Sprintf(" Analyzing patch %s (this can take a few minutes)...", version)
	s.Start()

	var result *models.AnalysisResult
	if rawContent == "" {
		result, err = analyzer.Analyze(cmd.Context(), version)
	} else {
		result, err = analyzer.AnalyzeContent(cmd.Context(), version, rawContent)
	}
	s.Stop()

	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return formatter.DisplayResults(cmd.OutOrStdout(), result, opts.output)
}

func printAnalyzeHeader(cmd *cobra.Command, baseURL, version, file string, contentLen int) {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "🔍 Patch:   %s\n", color.CyanString(version))
	fmt.Fprintf(out, "🌐 Service: %s\n", baseURL)
	if file != "" {
		fmt.Fprintf(out, "📄 File:    %s (%d characters)\n", file, contentLen)
	}
	fmt.Fprintln(out)
}
