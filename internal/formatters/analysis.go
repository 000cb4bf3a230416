package formatters

import (
	"fmt"
	"slices"
	"strings"

	"placementprep/internal/analyzer"
	"placementprep/internal/types"
)

// AnalyzeTextFormatter handles text formatting for analyze results
type AnalyzeTextFormatter struct{}

func (atf *AnalyzeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	var output strings.Builder
	writeEntryText(&output, result.Entry)

	if result.Saved {
		output.WriteString(fmt.Sprintf("Saved to history as %s\n", result.Entry.ID))
	}
	if len(result.Warnings) > 0 {
		output.WriteString("\n=== WARNINGS ===\n")
		for _, warning := range result.Warnings {
			output.WriteString(fmt.Sprintf("- %s\n", warning))
		}
	}

	return output.String(), nil
}

func (atf *AnalyzeTextFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// AnalyzeMarkdownFormatter handles markdown formatting for analyze results
type AnalyzeMarkdownFormatter struct{}

func (amf *AnalyzeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeOutput, got %T", data)
	}

	var output strings.Builder
	writeEntryMarkdown(&output, result.Entry, "#")

	if len(result.Warnings) > 0 {
		output.WriteString("## Warnings\n\n")
		for _, warning := range result.Warnings {
			output.WriteString(fmt.Sprintf("> %s\n", warning))
		}
		output.WriteString("\n")
	}
	if result.Saved {
		output.WriteString(fmt.Sprintf("_Saved to history as `%s`_\n", result.Entry.ID))
	}

	return output.String(), nil
}

func (amf *AnalyzeMarkdownFormatter) SupportedType() string {
	return "AnalyzeOutput"
}

// BatchTextFormatter renders several analyze results in input order
type BatchTextFormatter struct{}

func (btf *BatchTextFormatter) Format(data any) (string, error) {
	batch, ok := data.(types.BatchOutput)
	if !ok {
		return "", fmt.Errorf("expected BatchOutput, got %T", data)
	}

	single := &AnalyzeTextFormatter{}
	parts := make([]string, 0, len(batch.Results))
	for _, result := range batch.Results {
		text, err := single.Format(result)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"+strings.Repeat("-", 60)+"\n\n"), nil
}

func (btf *BatchTextFormatter) SupportedType() string {
	return "BatchOutput"
}

// BatchMarkdownFormatter renders several analyze results in input order
type BatchMarkdownFormatter struct{}

func (bmf *BatchMarkdownFormatter) Format(data any) (string, error) {
	batch, ok := data.(types.BatchOutput)
	if !ok {
		return "", fmt.Errorf("expected BatchOutput, got %T", data)
	}

	single := &AnalyzeMarkdownFormatter{}
	parts := make([]string, 0, len(batch.Results))
	for _, result := range batch.Results {
		text, err := single.Format(result)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n---\n\n"), nil
}

func (bmf *BatchMarkdownFormatter) SupportedType() string {
	return "BatchOutput"
}

// EntryTextFormatter handles text formatting for a stored history entry
type EntryTextFormatter struct{}

func (etf *EntryTextFormatter) Format(data any) (string, error) {
	entry, ok := data.(types.HistoryEntry)
	if !ok {
		return "", fmt.Errorf("expected HistoryEntry, got %T", data)
	}

	var output strings.Builder
	writeEntryText(&output, entry)
	return output.String(), nil
}

func (etf *EntryTextFormatter) SupportedType() string {
	return "HistoryEntry"
}

// EntryMarkdownFormatter handles markdown formatting for a stored history entry
type EntryMarkdownFormatter struct{}

func (emf *EntryMarkdownFormatter) Format(data any) (string, error) {
	entry, ok := data.(types.HistoryEntry)
	if !ok {
		return "", fmt.Errorf("expected HistoryEntry, got %T", data)
	}

	var output strings.Builder
	writeEntryMarkdown(&output, entry, "#")
	return output.String(), nil
}

func (emf *EntryMarkdownFormatter) SupportedType() string {
	return "HistoryEntry"
}

func scoreLine(entry types.HistoryEntry) string {
	line := fmt.Sprintf("%d/100 (%s)", entry.FinalScore, analyzer.ScoreBand(entry.FinalScore))
	if entry.FinalScore != entry.BaseScore {
		line += fmt.Sprintf(", base %d/100", entry.BaseScore)
	}
	return line
}

// confidenceSkills returns skills with a recorded confidence, sorted
func confidenceSkills(m types.SkillConfidenceMap) []string {
	skills := make([]string, 0, len(m))
	for skill := range m {
		skills = append(skills, skill)
	}
	slices.Sort(skills)
	return skills
}

func writeEntryText(output *strings.Builder, entry types.HistoryEntry) {
	output.WriteString("=== PLACEMENT READINESS ===\n")
	output.WriteString(fmt.Sprintf("Company: %s\n", CompanyHeading(entry.Company)))
	output.WriteString(fmt.Sprintf("Role: %s\n", RoleHeading(entry.Role)))
	output.WriteString(fmt.Sprintf("Readiness Score: %s\n", scoreLine(entry)))
	output.WriteString(fmt.Sprintf("Analyzed: %s\n", entry.CreatedAt.Format("2006-01-02 15:04 MST")))
	output.WriteString(fmt.Sprintf("ID: %s\n\n", entry.ID))

	output.WriteString("=== EXTRACTED SKILLS ===\n")
	for category, skills := range entry.ExtractedSkills.All() {
		output.WriteString(fmt.Sprintf("%s: %s\n", category, strings.Join(skills, ", ")))
	}
	output.WriteString("\n")

	if len(entry.SkillConfidenceMap) > 0 {
		output.WriteString("=== SKILL CONFIDENCE ===\n")
		for _, skill := range confidenceSkills(entry.SkillConfidenceMap) {
			output.WriteString(fmt.Sprintf("%s: %s\n", skill, entry.SkillConfidenceMap[skill]))
		}
		output.WriteString("\n")
	}

	output.WriteString("=== COMPANY INTEL ===\n")
	output.WriteString(fmt.Sprintf("Type: %s\n", entry.CompanyIntel.Type))
	output.WriteString(fmt.Sprintf("Size: %s\n", entry.CompanyIntel.Size))
	output.WriteString(fmt.Sprintf("Focus: %s\n\n", entry.CompanyIntel.Focus))

	output.WriteString("=== INTERVIEW ROUNDS ===\n")
	for _, round := range entry.Rounds {
		output.WriteString(round.Name + "\n")
		output.WriteString(fmt.Sprintf("  %s\n", round.Description))
		output.WriteString(fmt.Sprintf("  Why it matters: %s\n", round.WhyMatters))
		for _, item := range round.Checklist {
			output.WriteString(fmt.Sprintf("  [ ] %s\n", item))
		}
	}
	output.WriteString("\n")

	writePlanText(output, entry.Plan)
	output.WriteString("\n")
	writeQuestionsText(output, entry.Questions)
}

func writePlanText(output *strings.Builder, plan []types.DayPlan) {
	output.WriteString("=== 7-DAY PLAN ===\n")
	for _, day := range plan {
		output.WriteString(fmt.Sprintf("Day %d: %s\n", day.Day, day.Title))
		for _, task := range day.Tasks {
			output.WriteString(fmt.Sprintf("  - %s\n", task))
		}
	}
}

func writeQuestionsText(output *strings.Builder, questions []string) {
	output.WriteString("=== LIKELY INTERVIEW QUESTIONS ===\n")
	for i, question := range questions {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, question))
	}
}

func writeEntryMarkdown(output *strings.Builder, entry types.HistoryEntry, level string) {
	output.WriteString(fmt.Sprintf("%s %s: %s\n\n", level, CompanyHeading(entry.Company), RoleHeading(entry.Role)))
	output.WriteString(fmt.Sprintf("**Readiness Score:** %s\n\n", scoreLine(entry)))
	output.WriteString(fmt.Sprintf("**Analyzed:** %s | **ID:** `%s`\n\n", entry.CreatedAt.Format("2006-01-02 15:04 MST"), entry.ID))

	output.WriteString("## Extracted Skills\n\n")
	output.WriteString("| Category | Skills |\n|---|---|\n")
	for category, skills := range entry.ExtractedSkills.All() {
		output.WriteString(fmt.Sprintf("| %s | %s |\n", category, strings.Join(skills, ", ")))
	}
	output.WriteString("\n")

	if len(entry.SkillConfidenceMap) > 0 {
		output.WriteString("### Skill Confidence\n\n")
		for _, skill := range confidenceSkills(entry.SkillConfidenceMap) {
			output.WriteString(fmt.Sprintf("- **%s:** %s\n", skill, entry.SkillConfidenceMap[skill]))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Company Intel\n\n")
	output.WriteString(fmt.Sprintf("- **Type:** %s\n", entry.CompanyIntel.Type))
	output.WriteString(fmt.Sprintf("- **Size:** %s\n", entry.CompanyIntel.Size))
	output.WriteString(fmt.Sprintf("- **Focus:** %s\n\n", entry.CompanyIntel.Focus))

	output.WriteString("## Interview Rounds\n\n")
	for _, round := range entry.Rounds {
		output.WriteString(fmt.Sprintf("### %s\n\n", round.Name))
		output.WriteString(fmt.Sprintf("%s\n\n", round.Description))
		output.WriteString(fmt.Sprintf("_Why it matters:_ %s\n\n", round.WhyMatters))
		for _, item := range round.Checklist {
			output.WriteString(fmt.Sprintf("- [ ] %s\n", item))
		}
		output.WriteString("\n")
	}

	output.WriteString("## 7-Day Plan\n\n")
	for _, day := range entry.Plan {
		output.WriteString(fmt.Sprintf("### Day %d: %s\n", day.Day, day.Title))
		for _, task := range day.Tasks {
			output.WriteString(fmt.Sprintf("- %s\n", task))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Likely Interview Questions\n\n")
	for i, question := range entry.Questions {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, question))
	}
	output.WriteString("\n")
}
