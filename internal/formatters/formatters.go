package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"placementprep/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalyzeOutput", &AnalyzeTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeOutput", &AnalyzeMarkdownFormatter{})
	registry.RegisterFormatter("text", "BatchOutput", &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", "BatchOutput", &BatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "HistoryEntry", &EntryTextFormatter{})
	registry.RegisterFormatter("markdown", "HistoryEntry", &EntryMarkdownFormatter{})
	registry.RegisterFormatter("text", "HistoryList", &HistoryListTextFormatter{})
	registry.RegisterFormatter("markdown", "HistoryList", &HistoryListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalyzeOutput:
		return "AnalyzeOutput"
	case types.BatchOutput:
		return "BatchOutput"
	case types.HistoryEntry:
		return "HistoryEntry"
	case types.HistoryList:
		return "HistoryList"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// CompanyHeading returns the display name for a company, title-cased
func CompanyHeading(company string) string {
	company = strings.TrimSpace(company)
	if company == "" {
		return "Unknown company"
	}
	// Casers hold state, so each call gets its own
	return cases.Title(language.English, cases.NoLower).String(company)
}

// RoleHeading returns the display name for a role
func RoleHeading(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return "Unspecified role"
	}
	return role
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
