package formatters

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"placementprep/internal/types"
)

// HistoryListTextFormatter renders the history listing as an aligned table
type HistoryListTextFormatter struct{}

func (hlf *HistoryListTextFormatter) Format(data any) (string, error) {
	list, ok := data.(types.HistoryList)
	if !ok {
		return "", fmt.Errorf("expected HistoryList, got %T", data)
	}

	if list.Total == 0 {
		return "No saved analyses.\n", nil
	}

	var output strings.Builder
	tw := tabwriter.NewWriter(&output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCOMPANY\tROLE\tSCORE\tBAND")
	for _, e := range list.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ID,
			e.CreatedAt.Format("2006-01-02 15:04"),
			CompanyHeading(e.Company),
			RoleHeading(e.Role),
			e.FinalScore,
			e.Band)
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}
	output.WriteString(fmt.Sprintf("\n%d saved analyses\n", list.Total))
	return output.String(), nil
}

func (hlf *HistoryListTextFormatter) SupportedType() string {
	return "HistoryList"
}

// HistoryListMarkdownFormatter renders the history listing as a markdown table
type HistoryListMarkdownFormatter struct{}

func (hmf *HistoryListMarkdownFormatter) Format(data any) (string, error) {
	list, ok := data.(types.HistoryList)
	if !ok {
		return "", fmt.Errorf("expected HistoryList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Analysis History\n\n")
	if list.Total == 0 {
		output.WriteString("_No saved analyses._\n")
		return output.String(), nil
	}

	output.WriteString("| ID | Created | Company | Role | Score | Band |\n")
	output.WriteString("|---|---|---|---|---|---|\n")
	for _, e := range list.Entries {
		output.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s | %d | %s |\n",
			e.ID,
			e.CreatedAt.Format("2006-01-02 15:04"),
			CompanyHeading(e.Company),
			RoleHeading(e.Role),
			e.FinalScore,
			e.Band))
	}
	output.WriteString(fmt.Sprintf("\n**Total:** %d\n", list.Total))
	return output.String(), nil
}

func (hmf *HistoryListMarkdownFormatter) SupportedType() string {
	return "HistoryList"
}
