package cli

import (
	"fmt"

	"placementprep/internal/common"
	"placementprep/internal/types"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export the study plan and questions as plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := commandService(cmd)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer closeStore()

		text, err := svc.Export(cmd.Context(), args[0], types.ExportKind(exportWhat))
		if err != nil {
			return fmt.Errorf("failed to export history entry: %w", err)
		}
		return outputHandler(cmd).WriteText(text, exportConfig)
	},
}

var (
	exportConfig common.CommandConfig
	exportWhat   string
)

func init() {
	exportCmd.Flags().StringVarP(&exportConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	exportCmd.Flags().StringVar(&exportWhat, "what", string(types.ExportAll), "What to export: plan, questions, or all")

	_ = exportCmd.RegisterFlagCompletionFunc("what", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(types.ExportPlan), string(types.ExportQuestions), string(types.ExportAll)}, cobra.ShellCompDirectiveNoFileComp
	})
}
