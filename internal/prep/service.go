// Package prep ties the analyzer, the history store and telemetry together
// into the operations exposed by the CLI and the HTTP API.
package prep

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"placementprep/internal/analyzer"
	"placementprep/internal/common"
	"placementprep/internal/errors"
	"placementprep/internal/formatters"
	"placementprep/internal/history"
	"placementprep/internal/observability"
	"placementprep/internal/types"
)

// AnalyzeRequest is one document to analyze
type AnalyzeRequest struct {
	Source  string // File name or "inline"; only used for logs and metrics
	Text    string
	Company string
	Role    string
	Save    bool
}

// Service runs analyses and manages saved history
type Service struct {
	analyzer       *analyzer.Analyzer
	repo           history.Repository
	logger         *errors.Logger
	obs            *observability.ObservabilityManager
	now            func() time.Time
	shortChars     int
	maxConcurrency int
}

// Option customizes a Service
type Option func(*Service)

// WithObservability records spans and metrics through om
func WithObservability(om *observability.ObservabilityManager) Option {
	return func(s *Service) {
		s.obs = om
	}
}

// WithClock sets the clock used for updatedAt stamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithShortDocumentChars sets the length below which a document draws a warning
func WithShortDocumentChars(n int) Option {
	return func(s *Service) {
		s.shortChars = n
	}
}

// WithMaxConcurrency bounds how many documents a batch analyzes at once
func WithMaxConcurrency(n int) Option {
	return func(s *Service) {
		s.maxConcurrency = n
	}
}

// NewService creates a service over the given analyzer and repository
func NewService(a *analyzer.Analyzer, repo history.Repository, logger *errors.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	s := &Service{
		analyzer:       a,
		repo:           repo,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
		shortChars:     common.DefaultShortDocumentChars,
		maxConcurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the underlying history store
func (s *Service) Repository() history.Repository {
	return s.repo
}

// Analyze checks the text, runs the analysis and saves the entry when asked
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (types.AnalyzeOutput, error) {
	var out types.AnalyzeOutput
	err := s.obs.TrackOperation(ctx, "analyze", func(ctx context.Context) error {
		warnings, err := common.CheckDocumentText(req.Text, s.shortChars)
		if err != nil {
			s.obs.RecordBusinessMetric(ctx, observability.MetricEmptyDocument, false,
				attribute.String("source", req.Source))
			if appErr, ok := errors.AsAppError(err); ok && req.Source != "" {
				appErr.WithContext("source", req.Source)
			}
			return err
		}
		for _, w := range warnings {
			s.logger.Warn(w, "source", req.Source)
		}

		entry := types.NewHistoryEntry(s.analyzer.Analyze(req.Text, req.Company, req.Role))
		s.obs.RecordAnalysis(ctx, entry.BaseScore, utf8.RuneCountInString(req.Text), req.Source)

		if req.Save {
			if err := s.repo.Save(ctx, entry); err != nil {
				s.obs.RecordBusinessMetric(ctx, observability.MetricEntrySaved, false)
				return err
			}
			s.obs.RecordBusinessMetric(ctx, observability.MetricEntrySaved, true)
		}

		s.logger.Info("Job description analyzed",
			"id", entry.ID,
			"source", req.Source,
			"company", entry.Company,
			"base_score", entry.BaseScore,
			"categories", len(entry.ExtractedSkills.Categories()),
			"saved", req.Save)

		out = types.AnalyzeOutput{
			Entry:    entry,
			Band:     analyzer.ScoreBand(entry.FinalScore),
			Saved:    req.Save,
			Warnings: warnings,
		}
		return nil
	})
	return out, err
}

// AnalyzeBatch analyzes every request concurrently and returns the results in
// request order. The first failure cancels the remaining work.
func (s *Service) AnalyzeBatch(ctx context.Context, reqs []AnalyzeRequest) (types.BatchOutput, error) {
	results := make([]types.AnalyzeOutput, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.maxConcurrency))
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := s.Analyze(gctx, req)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.BatchOutput{}, err
	}

	return types.BatchOutput{Results: results}, nil
}

// List returns summaries of every saved entry, newest first
func (s *Service) List(ctx context.Context) (types.HistoryList, error) {
	var list types.HistoryList
	err := s.obs.TrackOperation(ctx, "history.list", func(ctx context.Context) error {
		entries, err := s.repo.List(ctx)
		if err != nil {
			return err
		}
		list.Entries = make([]types.Summary, len(entries))
		for i, e := range entries {
			list.Entries[i] = Summarize(e)
		}
		list.Total = len(entries)
		return nil
	})
	return list, err
}

// Get returns one saved entry
func (s *Service) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	var entry types.HistoryEntry
	err := s.obs.TrackOperation(ctx, "history.get", func(ctx context.Context) error {
		var err error
		entry, err = s.repo.Get(ctx, id)
		return err
	})
	return entry, err
}

// Delete removes one saved entry
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.obs.TrackOperation(ctx, "history.delete", func(ctx context.Context) error {
		err := s.repo.Delete(ctx, id)
		s.obs.RecordBusinessMetric(ctx, observability.MetricEntryDeleted, err == nil)
		if err == nil {
			s.logger.Info("History entry deleted", "id", id)
		}
		return err
	})
}

// Clear removes every saved entry
func (s *Service) Clear(ctx context.Context) error {
	return s.obs.TrackOperation(ctx, "history.clear", func(ctx context.Context) error {
		err := s.repo.Clear(ctx)
		s.obs.RecordBusinessMetric(ctx, observability.MetricHistoryClear, err == nil)
		if err == nil {
			s.logger.Info("History cleared")
		}
		return err
	})
}

// ToggleSkill flips the confidence of one extracted skill, recomputes the
// final score and stores the updated entry. Skill names match
// case-insensitively against the entry's extracted skills.
func (s *Service) ToggleSkill(ctx context.Context, id, skill string) (types.HistoryEntry, error) {
	var updated types.HistoryEntry
	err := s.obs.TrackOperation(ctx, "history.toggle", func(ctx context.Context) error {
		entry, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}

		name, ok := matchSkill(entry.ExtractedSkills, skill)
		if !ok {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Skill %q was not extracted for this analysis", strings.TrimSpace(skill)), nil).
				WithContext("entry_id", id)
		}

		entry.SkillConfidenceMap = types.ToggleSkill(entry.SkillConfidenceMap, name)
		entry.FinalScore = analyzer.AdjustedScore(entry.BaseScore, entry.SkillConfidenceMap)
		entry.UpdatedAt = s.now()

		if err := s.repo.Update(ctx, entry); err != nil {
			s.obs.RecordBusinessMetric(ctx, observability.MetricSkillToggled, false)
			return err
		}
		s.obs.RecordBusinessMetric(ctx, observability.MetricSkillToggled, true)

		s.logger.Info("Skill confidence toggled",
			"id", id,
			"skill", name,
			"confidence", entry.SkillConfidenceMap[name],
			"final_score", entry.FinalScore)
		updated = entry
		return nil
	})
	return updated, err
}

// Export renders the plan and/or questions of a saved entry as plain text
func (s *Service) Export(ctx context.Context, id string, kind types.ExportKind) (string, error) {
	if !kind.Valid() {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Unknown export %q, expected plan, questions or all", kind), nil)
	}

	var text string
	err := s.obs.TrackOperation(ctx, "history.export", func(ctx context.Context) error {
		entry, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		text = formatters.ExportText(entry, kind)
		s.obs.RecordBusinessMetric(ctx, observability.MetricPlanExported, true,
			attribute.String("what", string(kind)))
		return nil
	}, attribute.String("what", string(kind)))
	return text, err
}

// Summarize builds the listing view of an entry
func Summarize(e types.HistoryEntry) types.Summary {
	return types.Summary{
		ID:         e.ID,
		CreatedAt:  e.CreatedAt,
		Company:    e.Company,
		Role:       e.Role,
		BaseScore:  e.BaseScore,
		FinalScore: e.FinalScore,
		Band:       analyzer.ScoreBand(e.FinalScore),
	}
}

func matchSkill(skills types.ExtractedSkills, skill string) (string, bool) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return "", false
	}
	for _, name := range skills.Flatten() {
		if strings.EqualFold(name, skill) {
			return name, true
		}
	}
	return "", false
}
