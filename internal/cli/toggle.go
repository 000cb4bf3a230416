package cli

import (
	"fmt"

	"placementprep/internal/common"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <id> <skill>",
	Short: "Flip a skill between known and needs practice",
	Long: `Toggle the confidence of one extracted skill on a saved analysis. An unmarked
skill or one needing practice becomes known, a known skill goes back to needing
practice. Known skills add 2 points to the live score and skills needing
practice take 2 away. The updated analysis is printed.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &toggleConfig)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLoggerFromContext(cmd.Context())

		svc, closeStore, err := commandService(cmd)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer closeStore()

		entry, err := svc.ToggleSkill(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to toggle skill: %w", err)
		}
		logger.Info("Skill confidence updated",
			"entry_id", entry.ID,
			"skill", args[1],
			"final_score", entry.FinalScore)

		return outputHandler(cmd).HandleOutput(entry, toggleConfig)
	},
}

var toggleConfig common.CommandConfig

func init() {
	toggleCmd.Flags().StringVarP(&toggleConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	toggleCmd.Flags().StringVar(&toggleConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	_ = toggleCmd.RegisterFlagCompletionFunc("format", formatFlagCompletion)
}
