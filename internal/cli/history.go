package cli

import (
	"fmt"

	"placementprep/internal/common"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show and delete saved analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses, newest first",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &historyConfig)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := commandService(cmd)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer closeStore()

		list, err := svc.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}
		return outputHandler(cmd).HandleOutput(list, historyConfig)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved analysis",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &historyConfig)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := commandService(cmd)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer closeStore()

		entry, err := svc.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to show history entry: %w", err)
		}
		return outputHandler(cmd).HandleOutput(entry, historyConfig)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := commandService(cmd)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer closeStore()

		if err := svc.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete history entry: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return err
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved analysis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !historyClearYes {
			return fmt.Errorf("refusing to clear history without --yes")
		}

		svc, closeStore, err := commandService(cmd)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer closeStore()

		if err := svc.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return err
	},
}

var (
	historyConfig   common.CommandConfig
	historyClearYes bool
)

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyShowCmd} {
		c.Flags().StringVarP(&historyConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
		c.Flags().StringVar(&historyConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
		_ = c.RegisterFlagCompletionFunc("format", formatFlagCompletion)
	}
	historyClearCmd.Flags().BoolVar(&historyClearYes, "yes", false, "Confirm deleting every saved analysis")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd)
}
