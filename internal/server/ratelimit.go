package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"placementprep/internal/config"
	"placementprep/internal/errors"

	"golang.org/x/time/rate"
)

// Rate budgets. Analysis parses and scores a whole document, so it draws on
// its own bucket and cannot starve history reads from the same client.
const (
	budgetAnalyze = "analyze"
	budgetHistory = "history"
)

const bucketIdleTimeout = 10 * time.Minute

// budget is the refill rate and size of one kind of token bucket
type budget struct {
	perMinute int
	burst     int
}

func (b budget) limit() rate.Limit {
	return rate.Limit(float64(b.perMinute) / 60.0)
}

// retryAfter is the time one token takes to refill, in whole seconds
func (b budget) retryAfter() int {
	if b.perMinute <= 0 {
		return 60
	}
	return (60 + b.perMinute - 1) / b.perMinute
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per (budget, client) pair
type RateLimiter struct {
	mu      sync.Mutex
	budgets map[string]budget
	buckets map[string]*bucket
	done    chan struct{}
	once    sync.Once
	logger  *errors.Logger
}

// NewRateLimiter builds the analyze and history budgets from cfg and starts
// evicting idle buckets
func NewRateLimiter(cfg config.RateLimitConfig, logger *errors.Logger) *RateLimiter {
	rl := &RateLimiter{
		budgets: map[string]budget{
			budgetAnalyze: {perMinute: cfg.Analyze.RequestsPerMin, burst: cfg.Analyze.BurstCapacity},
			budgetHistory: {perMinute: cfg.RequestsPerMin, burst: cfg.BurstCapacity},
		},
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
		logger:  logger,
	}

	go rl.cleanupRoutine(bucketIdleTimeout)
	return rl
}

// Allow takes a token from the client's bucket for the named budget.
// Unknown budgets are not limited.
func (rl *RateLimiter) Allow(budgetName, client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.budgets[budgetName]
	if !ok {
		return true
	}

	key := budgetName + "|" + client
	bk, exists := rl.buckets[key]
	if !exists {
		bk = &bucket{limiter: rate.NewLimiter(b.limit(), b.burst)}
		rl.buckets[key] = bk
	}
	bk.lastSeen = time.Now()

	return bk.limiter.Allow()
}

// GetStats reports each budget and how many clients currently hold a bucket in it
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	active := make(map[string]int, len(rl.budgets))
	for key := range rl.buckets {
		name, _, _ := strings.Cut(key, "|")
		active[name]++
	}

	budgets := make(map[string]any, len(rl.budgets))
	for name, b := range rl.budgets {
		budgets[name] = map[string]any{
			"rate_per_minute": b.perMinute,
			"burst_capacity":  b.burst,
			"active_clients":  active[name],
		}
	}

	return map[string]any{
		"active_limiters": len(rl.buckets),
		"budgets":         budgets,
	}
}

func (rl *RateLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now().Add(-interval))
		case <-rl.done:
			return
		}
	}
}

// evictIdle drops buckets last used before cutoff
func (rl *RateLimiter) evictIdle(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, bk := range rl.buckets {
		if bk.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}

	if rl.logger != nil {
		rl.logger.Debug("Rate limiter cleanup completed", "remaining_buckets", len(rl.buckets))
	}
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

// rateLimitMiddleware charges requests against the named budget
func (s *Server) rateLimitMiddleware(budgetName string) func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			client := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if client == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(budgetName, client) {
				s.Logger.Info("Rate limit exceeded",
					"budget", budgetName,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				w.Header().Set("Retry-After", strconv.Itoa(s.RateLimiter.budgets[budgetName].retryAfter()))
				writeErrorResponse(w, "Rate limit exceeded", "Too many "+budgetName+" requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey identifies the client a request is charged to; an empty
// key means the request is not limited
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// getClientIP prefers proxy headers over RemoteAddr
func getClientIP(r *http.Request) string {
	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid address in a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
