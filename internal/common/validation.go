package common

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"placementprep/internal/errors"
)

// DefaultShortDocumentChars is used when no threshold is configured
const DefaultShortDocumentChars = 200

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// CheckDocumentText rejects empty or whitespace-only text and returns a
// warning when the trimmed text has fewer than shortChars characters.
// A non-positive shortChars uses DefaultShortDocumentChars.
func CheckDocumentText(text string, shortChars int) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.NewValidationError(errors.ErrCodeEmptyDocument,
			"Job description text is empty", nil)
	}

	if shortChars <= 0 {
		shortChars = DefaultShortDocumentChars
	}
	if n := utf8.RuneCountInString(trimmed); n < shortChars {
		return []string{fmt.Sprintf(
			"Job description is short (%d characters, fewer than %d); skill detection and scoring may be less accurate",
			n, shortChars)}, nil
	}
	return nil, nil
}
