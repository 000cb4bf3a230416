// Package analyzer turns a job description into a preparation record using
// fixed keyword tables and decision rules.
package analyzer

import (
	"time"

	"github.com/google/uuid"

	"placementprep/internal/types"
)

// Analyzer runs the analysis pipeline. The zero value is not usable; build
// one with New. An Analyzer is safe for concurrent use.
type Analyzer struct {
	taxonomy *Taxonomy
	now      func() time.Time
	newID    func() string
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// WithIDGenerator overrides the record identifier source
func WithIDGenerator(newID func() string) Option {
	return func(a *Analyzer) {
		a.newID = newID
	}
}

// WithTaxonomy replaces the built-in taxonomy
func WithTaxonomy(t *Taxonomy) Option {
	return func(a *Analyzer) {
		a.taxonomy = t
	}
}

// New creates an Analyzer
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		taxonomy: DefaultTaxonomy(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces the full record for one document. Company and role may be
// empty. Callers are expected to reject empty text before getting here.
func (a *Analyzer) Analyze(text, company, role string) types.AnalysisResult {
	skills := a.taxonomy.Extract(text)
	score := Score(text, company, role, skills)
	plan := GeneratePlan(skills)
	questions := GenerateQuestions(skills)
	intel := ClassifyCompany(company)
	rounds := ForecastRounds(skills, intel.Type)

	return types.AnalysisResult{
		ID:              a.newID(),
		CreatedAt:       a.now(),
		Text:            text,
		Company:         company,
		Role:            role,
		ExtractedSkills: skills,
		BaseScore:       score,
		Rounds:          rounds,
		Plan:            plan,
		Questions:       questions,
		CompanyIntel:    intel,
	}
}
