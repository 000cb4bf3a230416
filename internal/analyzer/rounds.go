package analyzer

import (
	"strings"

	"placementprep/internal/types"
)

type roundTemplate struct {
	name        string
	description string
	whyMatters  string
}

var (
	roundOnlineAssessment = roundTemplate{
		name:        "Round 1: Online Assessment",
		description: "Aptitude (Quants, Logical) + Basic Programming MCQs + 1-2 Coding Questions",
		whyMatters:  "Elimination round. Speed and accuracy in aptitude are key here.",
	}
	roundScreening = roundTemplate{
		name:        "Round 1: Screening / HackerRank",
		description: "Practical Coding Challenge (DSA/Dev) or Take-home assignment",
		whyMatters:  "Tests your hands-on coding ability and code quality before talking to humans.",
	}
	roundTechnicalInterview = roundTemplate{
		name:        "Round 2: Technical Interview (TR)",
		description: "DSA (Arrays/Strings), OOPS concepts, DBMS queries, and Project discussion",
		whyMatters:  "Validates your core engineering concepts. Be ready to write code on paper/whiteboard.",
	}
	roundDeepDive = roundTemplate{
		name:        "Round 2: Technical Deep Dive",
		description: "Data Structures & Algorithms (Optimization focus) + Language internals",
		whyMatters:  "Assess problem-solving depth. Can you optimize O(n^2) to O(n log n)?",
	}
	roundSystemDesign = roundTemplate{
		name:        "Round 3: System Design / Frameworks",
		description: "Discussions on Project Architecture, API design, State management (React/Redux), or DB choices",
		whyMatters:  "Tests if you can build scalable, maintainable software, not just write loops.",
	}
	roundManagerial = roundTemplate{
		name:        "Round 3: Managerial (MR)",
		description: "Scenario-based questions, Project challenges, Team fit",
		whyMatters:  "Checks communication skills and stability. Are you a long-term fit?",
	}
	roundHiringManager = roundTemplate{
		name:        "Round 3: Hiring Manager",
		description: "Past experiences, behavioral questions, culture alignment",
		whyMatters:  "The manager decides if they want to work with you daily.",
	}
)

const roundCount = 4

const (
	finalRoundEnterprise  = "Round 4: HR Interview"
	finalRoundStartup     = "Round 4: Culture Fit & Offer"
	finalRoundDescription = "Salary negotiation, Relocation, Company policies"
	finalRoundWhyMatters  = "Final check on logistics and attitude. Usually a formality if you reached here."
)

// ForecastRounds predicts the four interview rounds, in chronological order,
// from the extracted skills and the classified company type.
func ForecastRounds(skills types.ExtractedSkills, companyType string) []types.Round {
	enterprise := IsEnterprise(companyType)

	first, second := roundScreening, roundDeepDive
	if enterprise {
		first, second = roundOnlineAssessment, roundTechnicalInterview
	}

	var third roundTemplate
	switch {
	case skills.Has(CategoryWeb) && !enterprise:
		third = roundSystemDesign
	case enterprise:
		third = roundManagerial
	default:
		third = roundHiringManager
	}

	final := roundTemplate{
		name:        finalRoundStartup,
		description: finalRoundDescription,
		whyMatters:  finalRoundWhyMatters,
	}
	if enterprise {
		final.name = finalRoundEnterprise
	}

	templates := []roundTemplate{first, second, third, final}
	rounds := make([]types.Round, len(templates))
	for i, t := range templates {
		rounds[i] = t.round(ChecklistSeparator(i))
	}
	return rounds
}

// ChecklistSeparator returns the separator that splits the description of
// the round at position i into checklist items. The final round lists its
// topics with commas, the others with plus signs.
func ChecklistSeparator(i int) string {
	if i == roundCount-1 {
		return ","
	}
	return "+"
}

func (t roundTemplate) round(sep string) types.Round {
	return types.Round{
		Name:        t.name,
		Description: t.description,
		WhyMatters:  t.whyMatters,
		Checklist:   Checklist(t.description, sep),
	}
}

// Checklist splits a round description into trimmed, non-empty items
func Checklist(description, sep string) []string {
	items := []string{}
	for _, part := range strings.Split(description, sep) {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
