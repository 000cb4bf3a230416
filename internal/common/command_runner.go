package common

import (
	"context"
	"slices"

	"placementprep/internal/errors"
)

// DocumentOperationFunc turns extracted documents into a printable result
type DocumentOperationFunc[Output any] func(ctx context.Context, docs []Document) (Output, error)

// DocumentCommand holds what a file-driven CLI command needs to read its
// inputs and write its result
type DocumentCommand struct {
	Logger        *errors.Logger
	FileProcessor *FileProcessor
	OutputHandler *OutputHandler
	Config        CommandConfig
}

// RunDocumentCommand reads and extracts every file in args, prepends any
// inline documents, runs op and writes its formatted output.
func RunDocumentCommand[Output any](ctx context.Context, cmd DocumentCommand, args []string, inline []Document, op DocumentOperationFunc[Output]) error {
	docs, err := cmd.FileProcessor.ReadDocuments(args...)
	if err != nil {
		return err
	}
	docs = slices.Concat(inline, docs)

	if len(docs) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"No input given: pass one or more files or inline text", nil)
	}

	if cmd.Logger != nil {
		cmd.Logger.Debug("Running document command",
			"documents", len(docs),
			"format", cmd.Config.OutputFormat,
			"output_file", cmd.Config.OutputFile)
	}

	result, err := op(ctx, docs)
	if err != nil {
		return err
	}

	return cmd.OutputHandler.HandleOutput(result, cmd.Config)
}
