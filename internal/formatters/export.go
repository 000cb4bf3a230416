package formatters

import (
	"fmt"
	"strings"

	"placementprep/internal/types"
)

// ExportText renders the plan, the questions, or both as plain text suitable
// for saving or pasting. Unknown kinds export everything.
func ExportText(entry types.HistoryEntry, kind types.ExportKind) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%s - %s\n", CompanyHeading(entry.Company), RoleHeading(entry.Role)))
	output.WriteString(fmt.Sprintf("Readiness Score: %s\n\n", scoreLine(entry)))

	includePlan := kind != types.ExportQuestions
	includeQuestions := kind != types.ExportPlan

	if includePlan {
		writePlanText(&output, entry.Plan)
	}
	if includePlan && includeQuestions {
		output.WriteString("\n")
	}
	if includeQuestions {
		writeQuestionsText(&output, entry.Questions)
	}

	return output.String()
}
