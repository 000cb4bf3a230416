package types

import "time"

// CompanyIntel describes the hiring archetype a company name was classified into
type CompanyIntel struct {
	Type  string `json:"type"`  // "Enterprise / Service-Based", "Startup / Product-Based" or "Unknown"
	Size  string `json:"size"`  // Approximate headcount bracket
	Focus string `json:"focus"` // What the hiring process tends to emphasize
	Color string `json:"color"` // Presentation tag
}

// Round is one stage of the forecast interview process
type Round struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	WhyMatters  string   `json:"whyMatters"`
	Checklist   []string `json:"checklist"`
}

// DayPlan is one day of the preparation plan
type DayPlan struct {
	Day   int      `json:"day"`
	Title string   `json:"title"`
	Tasks []string `json:"tasks"`
}

// AnalysisResult is the output of one analysis run. It is treated as a value:
// later changes replace the whole record rather than mutating it.
type AnalysisResult struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"createdAt"`
	Text            string          `json:"jdText"`
	Company         string          `json:"company"`
	Role            string          `json:"role"`
	ExtractedSkills ExtractedSkills `json:"extractedSkills"`
	BaseScore       int             `json:"baseScore"`
	Rounds          []Round         `json:"rounds"`
	Plan            []DayPlan       `json:"plan"`
	Questions       []string        `json:"questions"`
	CompanyIntel    CompanyIntel    `json:"companyIntel"`
}

// HistoryEntry is the persisted form of an analysis together with the
// caller-owned confidence state and the score derived from it.
type HistoryEntry struct {
	AnalysisResult
	SkillConfidenceMap SkillConfidenceMap `json:"skillConfidenceMap"`
	FinalScore         int                `json:"finalScore"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// NewHistoryEntry wraps a fresh analysis with an empty confidence map
func NewHistoryEntry(result AnalysisResult) HistoryEntry {
	return HistoryEntry{
		AnalysisResult:     result,
		SkillConfidenceMap: SkillConfidenceMap{},
		FinalScore:         result.BaseScore,
		UpdatedAt:          result.CreatedAt,
	}
}

// Summary is the listing view of a history entry
type Summary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Company    string    `json:"company"`
	Role       string    `json:"role"`
	BaseScore  int       `json:"baseScore"`
	FinalScore int       `json:"finalScore"`
	Band       string    `json:"band"`
}

// HistoryList is a newest-first listing of stored analyses
type HistoryList struct {
	Entries []Summary `json:"entries"`
	Total   int       `json:"total"`
}

// AnalyzeOutput is what the analyze command and endpoint hand back
type AnalyzeOutput struct {
	Entry    HistoryEntry `json:"result"`
	Band     string       `json:"band"`
	Saved    bool         `json:"saved"`
	Warnings []string     `json:"warnings,omitempty"`
}

// BatchOutput groups results of a multi-document analyze run, in input order
type BatchOutput struct {
	Results []AnalyzeOutput `json:"results"`
}

// ExportKind selects what a plain-text export contains
type ExportKind string

const (
	ExportPlan      ExportKind = "plan"
	ExportQuestions ExportKind = "questions"
	ExportAll       ExportKind = "all"
)

// Valid reports whether k is a known export kind
func (k ExportKind) Valid() bool {
	switch k {
	case ExportPlan, ExportQuestions, ExportAll:
		return true
	}
	return false
}
