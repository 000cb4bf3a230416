package history

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// entrySchema describes the canonical persisted entry. Legacy fields are
// rewritten by Migrate before validation runs.
const entrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "createdAt"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "createdAt": {"type": "string", "format": "date-time"},
    "updatedAt": {"type": "string", "format": "date-time"},
    "jdText": {"type": "string"},
    "company": {"type": "string"},
    "role": {"type": "string"},
    "baseScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "finalScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "extractedSkills": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"type": "string"}}
    },
    "skillConfidenceMap": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "rounds": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "description": {"type": "string"},
          "whyMatters": {"type": "string"},
          "checklist": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "plan": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "day": {"type": "integer"},
          "title": {"type": "string"},
          "tasks": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "questions": {"type": "array", "items": {"type": "string"}},
    "companyIntel": {
      "type": "object",
      "properties": {
        "type": {"type": "string"},
        "size": {"type": "string"},
        "focus": {"type": "string"},
        "color": {"type": "string"}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(entrySchema))
})

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateEntry checks a decoded (and migrated) document against the entry schema
func ValidateEntry(doc map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile history entry schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to load history entry: %w", err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
