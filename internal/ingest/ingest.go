// Package ingest turns job description files into plain text for analysis.
package ingest

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"placementprep/internal/errors"
	"placementprep/internal/utils"
)

// Format identifies how a document's bytes become text
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

var extensionFormats = map[string]Format{
	".txt":      FormatText,
	".text":     FormatText,
	".md":       FormatText,
	".markdown": FormatText,
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// FormatFor returns the format implied by a file name's extension
func FormatFor(filename string) (Format, bool) {
	f, ok := extensionFormats[utils.GetFileExtension(filename)]
	return f, ok
}

// SupportedExtensions lists the accepted file extensions, sorted
func SupportedExtensions() []string {
	return slices.Sorted(maps.Keys(extensionFormats))
}

// CheckSupported returns an UNSUPPORTED_DOCUMENT error for extensions no
// extractor handles
func CheckSupported(filename string) error {
	if _, ok := FormatFor(filename); ok {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
		fmt.Sprintf("Unsupported document type %q (supported: %s)",
			utils.GetFileExtension(filename), strings.Join(SupportedExtensions(), ", ")), nil).
		WithContext("filename", filename)
}

// Extract converts the contents of the named file into text. The name is only
// used to pick the format.
func Extract(filename string, data []byte) (string, error) {
	if err := CheckSupported(filename); err != nil {
		return "", err
	}
	format, _ := FormatFor(filename)

	text, err := ExtractFormat(format, data)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return "", appErr.WithContext("filename", filename)
		}
		return "", err
	}
	return text, nil
}

// ExtractFormat converts data of a known format into text
func ExtractFormat(format Format, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case FormatText:
		text, err = decodeText(data)
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	case FormatHTML:
		text, err = extractHTML(data)
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			fmt.Sprintf("Unsupported document format %q", format), nil)
	}
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to extract text from %s document", format), err).
			WithContext("format", string(format))
	}
	return text, nil
}

// decodeText honors a UTF-8 or UTF-16 byte order mark and otherwise reads
// UTF-8, replacing invalid sequences
func decodeText(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n"))), nil
}

// normalizeWhitespace collapses runs of spaces inside lines and drops blank lines
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if collapsed := strings.Join(strings.Fields(line), " "); collapsed != "" {
			kept = append(kept, collapsed)
		}
	}
	return strings.Join(kept, "\n")
}
