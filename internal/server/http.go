package server

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"placementprep/internal/config"
	prepErrors "placementprep/internal/errors"
	"placementprep/internal/prep"
)

// AnalyzeRequest is the body of POST /analyze. Save defaults to true.
type AnalyzeRequest struct {
	Text    string `json:"text" validate:"required"`
	Company string `json:"company" validate:"max=200"`
	Role    string `json:"role" validate:"max=200"`
	Save    *bool  `json:"save"`
}

// ToggleSkillRequest is the body of POST /history/{id}/skills
type ToggleSkillRequest struct {
	Skill string `json:"skill" validate:"required,max=100"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StoreStatus is implemented by history stores that can report their health
type StoreStatus interface {
	Stats() map[string]any
	IsHealthy() bool
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Service   *prep.Service
	Store     StoreStatus
	validator *validator.Validate

	Logger *prepErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance serving svc
func NewServer(appCfg *config.Config, cfg ServerConfig, svc *prep.Service, logger *prepErrors.Logger) *Server {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(*cfg.RateLimit, logger)
	}

	var store StoreStatus
	if s, ok := svc.Repository().(StoreStatus); ok {
		store = s
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Service:        svc,
		Store:          store,
		validator:      newValidator(),
		Logger:         logger,
	}
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
