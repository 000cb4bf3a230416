package analyzer

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestAnalyzer() *Analyzer {
	return New(
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() string { return "fixed-id" }),
	)
}

func TestAnalyzeScenario(t *testing.T) {
	result := newTestAnalyzer().Analyze(
		"We need a React and Node.js developer with SQL experience", "Infosys", "Frontend Engineer")

	assert.Equal(t, "fixed-id", result.ID)
	assert.Equal(t, fixedTime, result.CreatedAt)
	assert.Equal(t, "Infosys", result.Company)
	assert.Equal(t, "Frontend Engineer", result.Role)

	assert.Equal(t, []string{CategoryWeb, CategoryData}, result.ExtractedSkills.Categories())
	assert.Equal(t, []string{"React", "Node.js"}, result.ExtractedSkills.Skills(CategoryWeb))
	assert.Equal(t, []string{"SQL"}, result.ExtractedSkills.Skills(CategoryData))

	assert.Equal(t, CompanyTypeEnterprise, result.CompanyIntel.Type)
	require.Len(t, result.Rounds, 4)
	assert.Contains(t, result.Rounds[0].Name, "Online Assessment")
	assert.Equal(t, 65, result.BaseScore)

	require.Len(t, result.Plan, 7)
	assert.Contains(t, result.Plan[4].Tasks, taskFrontend)
	assert.Len(t, result.Questions, MaxQuestions)
}

func TestAnalyzeDottedFrameworks(t *testing.T) {
	result := newTestAnalyzer().Analyze("Looking for a Vue.js and Angular.js developer", "Acme Startup", "Frontend Engineer")

	assert.Equal(t, []string{"Vue", "Angular"}, result.ExtractedSkills.Skills(CategoryWeb))
	assert.False(t, result.ExtractedSkills.Has(FallbackCategory))
	assert.Equal(t, "Round 3: System Design / Frameworks", result.Rounds[2].Name)
	assert.Contains(t, result.Plan[4].Tasks, taskFrontend)
	assert.Equal(t, 65, result.BaseScore)
}

func TestAnalyzeCompanyChangesFirstRound(t *testing.T) {
	const text = "We need a React and Node.js developer with SQL experience"
	enterprise := newTestAnalyzer().Analyze(text, "Infosys", "")
	startup := newTestAnalyzer().Analyze(text, "Acme Startup", "")

	assert.NotEqual(t, enterprise.Rounds[0].Name, startup.Rounds[0].Name)
	assert.Equal(t, "Round 1: Online Assessment", enterprise.Rounds[0].Name)
	assert.Equal(t, "Round 1: Screening / HackerRank", startup.Rounds[0].Name)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	result := newTestAnalyzer().Analyze("", "", "")

	assert.Equal(t, []string{FallbackCategory}, result.ExtractedSkills.Categories())
	assert.Equal(t, []string{FallbackSkill}, result.ExtractedSkills.Skills(FallbackCategory))
	assert.Equal(t, 35, result.BaseScore)
	assert.Equal(t, CompanyTypeUnknown, result.CompanyIntel.Type)
	assert.Equal(t, "Round 3: Hiring Manager", result.Rounds[2].Name)
	assert.Len(t, result.Plan, 7)
	assert.Len(t, result.Questions, 7)
}

func TestAnalyzeDefaults(t *testing.T) {
	a := New()
	first := a.Analyze("Go", "", "")
	second := a.Analyze("Go", "", "")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, time.UTC, first.CreatedAt.Location())
	assert.WithinDuration(t, time.Now(), first.CreatedAt, time.Minute)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := newTestAnalyzer()
	text := "Backend role: Java, Spring, MySQL, Docker, Kubernetes, DSA and OOP."
	first := a.Analyze(text, "Startup Inc", "SDE")
	second := a.Analyze(text, "Startup Inc", "SDE")

	assert.True(t, first.ExtractedSkills.Equal(second.ExtractedSkills))
	assert.Equal(t, first.BaseScore, second.BaseScore)
	assert.Equal(t, first.Rounds, second.Rounds)
	assert.Equal(t, first.Plan, second.Plan)
	assert.Equal(t, first.Questions, second.Questions)
	assert.Equal(t, first.CompanyIntel, second.CompanyIntel)
}

func TestAnalyzeConcurrentUse(t *testing.T) {
	a := newTestAnalyzer()
	text := strings.Repeat("Python and AWS with Selenium. ", 50)
	want := a.Analyze(text, "Wipro", "QA Engineer")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := a.Analyze(text, "Wipro", "QA Engineer")
			assert.Equal(t, want.BaseScore, got.BaseScore)
			assert.True(t, want.ExtractedSkills.Equal(got.ExtractedSkills))
		}()
	}
	wg.Wait()
}

func BenchmarkAnalyze(b *testing.B) {
	a := newTestAnalyzer()
	text := strings.Repeat("We need a React and Node.js developer with SQL experience. ", 40)
	for b.Loop() {
		_ = a.Analyze(text, "Infosys", "Frontend Engineer")
	}
}
