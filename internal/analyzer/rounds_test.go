package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundNames(t *testing.T, companyType string, cats ...string) []string {
	t.Helper()
	rounds := ForecastRounds(categories(cats...), companyType)
	require.Len(t, rounds, 4)
	names := make([]string, len(rounds))
	for i, r := range rounds {
		names[i] = r.Name
	}
	return names
}

func TestForecastRounds(t *testing.T) {
	tests := []struct {
		name        string
		companyType string
		categories  []string
		want        []string
	}{
		{
			name:        "enterprise",
			companyType: CompanyTypeEnterprise,
			categories:  []string{CategoryCoreCS},
			want: []string{
				"Round 1: Online Assessment",
				"Round 2: Technical Interview (TR)",
				"Round 3: Managerial (MR)",
				"Round 4: HR Interview",
			},
		},
		{
			name:        "enterprise with web stays managerial",
			companyType: CompanyTypeEnterprise,
			categories:  []string{CategoryWeb},
			want: []string{
				"Round 1: Online Assessment",
				"Round 2: Technical Interview (TR)",
				"Round 3: Managerial (MR)",
				"Round 4: HR Interview",
			},
		},
		{
			name:        "startup with web",
			companyType: CompanyTypeStartup,
			categories:  []string{CategoryWeb},
			want: []string{
				"Round 1: Screening / HackerRank",
				"Round 2: Technical Deep Dive",
				"Round 3: System Design / Frameworks",
				"Round 4: Culture Fit & Offer",
			},
		},
		{
			name:        "unknown without web",
			companyType: CompanyTypeUnknown,
			categories:  []string{FallbackCategory},
			want: []string{
				"Round 1: Screening / HackerRank",
				"Round 2: Technical Deep Dive",
				"Round 3: Hiring Manager",
				"Round 4: Culture Fit & Offer",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roundNames(t, tt.companyType, tt.categories...))
		})
	}
}

func TestForecastRoundsChecklists(t *testing.T) {
	rounds := ForecastRounds(categories(CategoryWeb), CompanyTypeEnterprise)
	require.Len(t, rounds, 4)

	assert.Equal(t, []string{"Aptitude (Quants, Logical)", "Basic Programming MCQs", "1-2 Coding Questions"}, rounds[0].Checklist)
	assert.Equal(t, []string{"DSA (Arrays/Strings), OOPS concepts, DBMS queries, and Project discussion"}, rounds[1].Checklist)
	assert.Equal(t, []string{"Scenario-based questions, Project challenges, Team fit"}, rounds[2].Checklist)
	assert.Equal(t, []string{"Salary negotiation", "Relocation", "Company policies"}, rounds[3].Checklist)
	assert.Equal(t, "Salary negotiation, Relocation, Company policies", rounds[3].Description)
}

func TestChecklistDropsEmptyItems(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Checklist(" a ++ b +", "+"))
	assert.Empty(t, Checklist("", ","))
}
