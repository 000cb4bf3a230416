package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"

	"github.com/go-playground/validator/v10"

	prepErrors "placementprep/internal/errors"
)

// healthHandler reports service health including the history store breaker
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "placementprep",
		"version": s.Version,
	}

	status := http.StatusOK
	if s.Store != nil {
		response["history"] = s.Store.Stats()
		if !s.Store.IsHealthy() {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "placementprep",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"auth_enabled":           len(s.APIKeys) > 0,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
			"analyze": map[string]any{
				"requests_per_min": s.RateLimit.Analyze.RequestsPerMin,
				"burst_capacity":   s.RateLimit.Analyze.BurstCapacity,
			},
		}
	}

	if s.Store != nil {
		response["history"] = s.Store.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest decodes a JSON body into v and runs struct validation
func (s *Server) parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	if err := s.validator.Struct(v); err != nil {
		return validationMessage(err)
	}
	return nil
}

// validationMessage turns validator output into a short client-facing error
func validationMessage(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("validation error: invalid request")
	}

	ve := validationErrors[0]
	switch ve.Tag() {
	case "required":
		return fmt.Errorf("%s field is required", ve.Field())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", ve.Field(), ve.Param())
	default:
		return fmt.Errorf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// writeAppError maps an application error onto a status code and error body
func writeAppError(w http.ResponseWriter, title string, err error) {
	appErr, ok := prepErrors.AsAppError(err)
	if !ok {
		writeErrorResponse(w, title, err.Error(), http.StatusInternalServerError)
		return
	}
	writeErrorResponse(w, title, appErr.Message, statusForError(appErr))
}

func statusForError(appErr *prepErrors.AppError) int {
	switch appErr.Code {
	case prepErrors.ErrCodeEntryNotFound:
		return http.StatusNotFound
	case prepErrors.ErrCodeEntryExists:
		return http.StatusConflict
	case prepErrors.ErrCodeStorageUnavailable:
		return http.StatusServiceUnavailable
	}
	if appErr.Type == prepErrors.ErrorTypeValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
