package cli

import (
	"context"

	"placementprep/internal/analyzer"
	"placementprep/internal/common"
	"placementprep/internal/config"
	"placementprep/internal/errors"
	"placementprep/internal/formatters"
	"placementprep/internal/history"
	"placementprep/internal/observability"
	"placementprep/internal/prep"

	"github.com/spf13/cobra"
)

// openService wires the analyzer and the configured history store into the
// service every command runs against. The returned func closes the store.
func openService(ctx context.Context, cfg *config.Config, logger *errors.Logger, om *observability.ObservabilityManager) (*prep.Service, func(), error) {
	var opts []history.OpenOption
	if om != nil {
		opts = append(opts, history.WithObserver(om))
	}

	repo, err := history.Open(ctx, cfg.History, logger, opts...)
	if err != nil {
		return nil, nil, err
	}

	svc := prep.NewService(analyzer.New(), repo, logger,
		prep.WithObservability(om),
		prep.WithMaxConcurrency(cfg.App.MaxConcurrency),
		prep.WithShortDocumentChars(cfg.App.ShortDocumentChars),
	)

	closeFn := func() {
		if err := repo.Close(); err != nil {
			logger.LogError(err, "Failed to close history store")
		}
	}
	return svc, closeFn, nil
}

// commandService is openService for the short-lived CLI commands
func commandService(cmd *cobra.Command) (*prep.Service, func(), error) {
	return openService(cmd.Context(), getConfigFromContext(cmd.Context()), getLoggerFromContext(cmd.Context()), nil)
}

// outputHandler writes formatted results to the command's output stream
func outputHandler(cmd *cobra.Command) *common.OutputHandler {
	return common.NewOutputHandlerWithWriter(getLoggerFromContext(cmd.Context()), cmd.OutOrStdout())
}

// formatFlagCompletion completes --format from the configured formats
func formatFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok {
		return []string{}, cobra.ShellCompDirectiveError
	}
	if len(cfg.App.SupportedFormats) > 0 {
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	}
	return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
}

// resolveFormat applies the configured default and checks the format is supported
func resolveFormat(cmd *cobra.Command, cc *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	if cc.OutputFormat == "" {
		cc.OutputFormat = cfg.App.DefaultFormat
	}
	return common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats)
}
