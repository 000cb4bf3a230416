package cli

import (
	"context"
	"fmt"
	"strings"

	"placementprep/internal/common"
	"placementprep/internal/prep"

	"github.com/spf13/cobra"
)

const inlineSource = "inline"

var analyzeCmd = &cobra.Command{
	Use:   "analyze [job-description-file...]",
	Short: "Analyze job descriptions and build a preparation plan",
	Long: `Analyze one or more job descriptions. Each analysis includes:
- Skills found in the text, grouped by category
- A readiness score between 0 and 100
- Company intel and the likely interview rounds
- A 7-day preparation plan and practice questions

Files may be .txt, .md, .pdf, .docx or .html. Pass --text to analyze text
given on the command line instead. Several files are analyzed concurrently and
reported in the order given. Results are saved to the history unless --save=false.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && analyzeText == "" {
			return fmt.Errorf("requires at least one file or --text")
		}
		return nil
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &analyzeConfig)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig  common.CommandConfig
	analyzeText    string
	analyzeCompany string
	analyzeRole    string
	analyzeSave    bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Job description text to analyze instead of a file")
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "Company name")
	analyzeCmd.Flags().StringVar(&analyzeRole, "role", "", "Role title")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", true, "Save the analysis to history")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", formatFlagCompletion)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	svc, closeStore, err := commandService(cmd)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer closeStore()

	var inline []common.Document
	if analyzeText != "" {
		inline = append(inline, common.Document{Name: inlineSource, Text: analyzeText})
	}

	company := strings.TrimSpace(analyzeCompany)
	role := strings.TrimSpace(analyzeRole)
	request := func(doc common.Document) prep.AnalyzeRequest {
		return prep.AnalyzeRequest{
			Source:  doc.Name,
			Text:    doc.Text,
			Company: company,
			Role:    role,
			Save:    analyzeSave,
		}
	}

	logger.Info("Starting job description analysis",
		"files", len(args),
		"inline", analyzeText != "",
		"save", analyzeSave,
		"output_format", analyzeConfig.OutputFormat)

	command := common.DocumentCommand{
		Logger:        logger,
		FileProcessor: common.NewFileProcessor(logger, cfg.App.MaxFileSize),
		OutputHandler: outputHandler(cmd),
		Config:        analyzeConfig,
	}

	analyzeOperation := func(ctx context.Context, docs []common.Document) (any, error) {
		if len(docs) == 1 {
			return svc.Analyze(ctx, request(docs[0]))
		}
		reqs := make([]prep.AnalyzeRequest, 0, len(docs))
		for _, doc := range docs {
			reqs = append(reqs, request(doc))
		}
		return svc.AnalyzeBatch(ctx, reqs)
	}

	if err := common.RunDocumentCommand(cmd.Context(), command, args, inline, analyzeOperation); err != nil {
		return fmt.Errorf("failed to analyze job description: %w", err)
	}
	logger.Info("Job description analysis completed successfully")
	return nil
}
