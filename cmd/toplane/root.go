package main

import (
	"time"

	"github.com/rahul4469/toplane-guide/internal/config"
	"github.com/rahul4469/toplane-guide/internal/logging"
	"github.com/rahul4469/toplane-guide/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// buildVersion is set with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	apiURL   string
	timeout  time.Duration
	logLevel string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "toplane",
		Short: "Top lane patch guide in your terminal",
		Long: `Fetch a top lane patch analysis from the analysis service and print the
summary, tier list, champion changes and impact analysis.

The service address comes from TOPLANE_API_BASE_URL (or the file named by
TOPLANE_CONFIG) unless --api-url is given.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Analysis service base URL (overrides TOPLANE_API_BASE_URL)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "Request timeout (overrides TOPLANE_ANALYZE_TIMEOUT)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		NewAnalyzeCmd(opts),
		NewHealthCmd(opts),
		NewVersionCmd(),
	)
	return cmd
}

// newAnalyzer builds the service client from config plus flag overrides.
func (o *rootOptions) newAnalyzer() (*services.PatchAnalyzer, *zap.Logger, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(o.logLevel, true)
	if err != nil {
		return nil, nil, err
	}

	analyzerCfg := services.PatchAnalyzerConfig{
		BaseURL:        cfg.Upstream.BaseURL,
		AnalyzeTimeout: cfg.Upstream.AnalyzeTimeout,
		HealthTimeout:  cfg.Upstream.HealthTimeout,
	}
	if o.apiURL != "" {
		analyzerCfg.BaseURL = o.apiURL
	}
	if o.timeout > 0 {
		analyzerCfg.AnalyzeTimeout = o.timeout
		analyzerCfg.HealthTimeout = o.timeout
	}

	return services.NewPatchAnalyzer(analyzerCfg, logger, nil), logger, nil
}
