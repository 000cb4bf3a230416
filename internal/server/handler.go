package server

import (
	"net/http"
	"strings"

	"placementprep/internal/observability"
	"placementprep/internal/prep"
	"placementprep/internal/types"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// analyzeResponse is the body returned by POST /analyze
type analyzeResponse struct {
	Result   types.HistoryEntry `json:"result"`
	Band     string             `json:"band"`
	Saved    bool               `json:"saved"`
	Warnings []string           `json:"warnings"`
}

func recordFailure(span oteltrace.Span, errType string, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", errType))
}

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("placementprep.api").Start(r.Context(), "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			recordFailure(span, "validation", err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		save := req.Save == nil || *req.Save
		span.SetAttributes(
			attribute.Int("request.text_length", len(req.Text)),
			attribute.Bool("request.save", save),
		)

		out, err := s.Service.Analyze(ctx, prep.AnalyzeRequest{
			Source:  "api",
			Text:    req.Text,
			Company: strings.TrimSpace(req.Company),
			Role:    strings.TrimSpace(req.Role),
			Save:    save,
		})
		if err != nil {
			recordFailure(span, "analyze", err)
			writeAppError(w, "Failed to analyze job description", err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("entry.id", out.Entry.ID),
			attribute.Int("entry.base_score", out.Entry.BaseScore),
		)

		warnings := out.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		writeJSON(w, http.StatusOK, analyzeResponse{
			Result:   out.Entry,
			Band:     out.Band,
			Saved:    out.Saved,
			Warnings: warnings,
		})
	}
}

// createListHistoryHandler returns saved analyses, newest first
func (s *Server) createListHistoryHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("placementprep.api").Start(r.Context(), "api.history.list")
		defer span.End()

		list, err := s.Service.List(ctx)
		if err != nil {
			recordFailure(span, "storage", err)
			writeAppError(w, "Failed to list history", err)
			return
		}
		span.SetAttributes(attribute.Int("history.total", list.Total))

		writeJSON(w, http.StatusOK, list)
	}
}

// createClearHistoryHandler deletes every saved analysis
func (s *Server) createClearHistoryHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("placementprep.api").Start(r.Context(), "api.history.clear")
		defer span.End()

		if err := s.Service.Clear(ctx); err != nil {
			recordFailure(span, "storage", err)
			writeAppError(w, "Failed to clear history", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// createGetEntryHandler returns one saved analysis
func (s *Server) createGetEntryHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("placementprep.api").Start(r.Context(), "api.history.get")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("entry.id", id))

		entry, err := s.Service.Get(ctx, id)
		if err != nil {
			recordFailure(span, "storage", err)
			writeAppError(w, "Failed to get history entry", err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// createDeleteEntryHandler deletes one saved analysis
func (s *Server) createDeleteEntryHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("placementprep.api").Start(r.Context(), "api.history.delete")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("entry.id", id))

		if err := s.Service.Delete(ctx, id); err != nil {
			recordFailure(span, "storage", err)
			writeAppError(w, "Failed to delete history entry", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// createToggleSkillHandler flips the confidence of one skill and returns the
// updated entry
func (s *Server) createToggleSkillHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("placementprep.api").Start(r.Context(), "api.history.toggle")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("entry.id", id))

		var req ToggleSkillRequest
		if err := s.parseJSONRequest(r, &req); err != nil {
			recordFailure(span, "validation", err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		entry, err := s.Service.ToggleSkill(ctx, id, req.Skill)
		if err != nil {
			recordFailure(span, "toggle", err)
			writeAppError(w, "Failed to toggle skill", err)
			return
		}

		span.SetAttributes(
			attribute.String("skill", req.Skill),
			attribute.Int("entry.final_score", entry.FinalScore),
		)
		writeJSON(w, http.StatusOK, entry)
	}
}

// createExportHandler renders the plan and/or questions as plain text
func (s *Server) createExportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("placementprep.api").Start(r.Context(), "api.history.export")
		defer span.End()

		id := r.PathValue("id")
		kind := types.ExportKind(r.URL.Query().Get("what"))
		if kind == "" {
			kind = types.ExportAll
		}
		span.SetAttributes(
			attribute.String("entry.id", id),
			attribute.String("export.what", string(kind)),
		)

		text, err := s.Service.Export(ctx, id, kind)
		if err != nil {
			recordFailure(span, "export", err)
			writeAppError(w, "Failed to export history entry", err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(text)); err != nil {
			span.RecordError(err)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager, budgetName string) func(http.HandlerFunc) http.HandlerFunc {
	limit := s.rateLimitMiddleware(budgetName)

	return func(next http.HandlerFunc) http.HandlerFunc {
		limited := limit(next)
		return func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			limited(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				om.RecordBusinessMetric(r.Context(), observability.MetricRateLimitHit, true,
					attribute.String("budget", budgetName),
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		}
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
