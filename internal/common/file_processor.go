package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"placementprep/internal/errors"
	"placementprep/internal/ingest"
	"placementprep/internal/utils"
)

// Document is the extracted text of one input file
type Document struct {
	Name string
	Text string
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance. A positive
// maxFileSize rejects larger inputs.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadFile reads raw bytes from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			if fp.logger != nil {
				fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
			}
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ReadDocument validates one input file and extracts its text
func (fp *FileProcessor) ReadDocument(filename string) (Document, error) {
	if err := ingest.CheckSupported(filename); err != nil {
		return Document{}, err
	}

	if err := utils.ValidateInputFile(filename, fp.maxFileSize); err != nil {
		return Document{}, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	data, err := fp.ReadFile(filename)
	if err != nil {
		return Document{}, err
	}

	text, err := ingest.Extract(filename, data)
	if err != nil {
		return Document{}, err
	}

	if fp.logger != nil {
		fp.logger.Debug("Document extracted",
			"filename", filename,
			"size", utils.FormatFileSize(int64(len(data))),
			"characters", len([]rune(text)))
	}
	return Document{Name: filename, Text: text}, nil
}

// ReadDocuments reads every file, stopping at the first failure
func (fp *FileProcessor) ReadDocuments(filenames ...string) ([]Document, error) {
	docs := make([]Document, len(filenames))
	for i, filename := range filenames {
		doc, err := fp.ReadDocument(filename)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
	}
	return docs, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
