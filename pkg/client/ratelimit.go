package client

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Rate limit headers published by the admin API.
const (
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
)

// Thresholds for rate limit reporting.
const (
	// RateLimitWarning marks the remaining-request level below which the
	// observer starts logging warnings.
	RateLimitWarning = 20

	// RateLimitHealthy marks normal operation.
	RateLimitHealthy = 50
)

var rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "adminapi_rate_limit_remaining",
	Help: "Requests remaining in the current admin API rate limit window",
})

// RateLimitState is the most recently observed rate limit state.
type RateLimitState struct {
	// Remaining is the number of requests left in the current window, -1
	// until the first response carrying the header arrives.
	Remaining int

	// ResetAt is when the window resets, derived from the reset header
	// (seconds until reset).
	ResetAt time.Time

	// LastUpdate is when the state was last refreshed from headers.
	LastUpdate time.Time
}

// IsHealthy reports whether the window has comfortable headroom.
func (s RateLimitState) IsHealthy() bool {
	return s.Remaining < 0 || s.Remaining >= RateLimitHealthy
}

// TimeUntilReset returns the duration until the window resets, 0 if passed.
func (s RateLimitState) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// RateLimitObserver tracks the admin API rate limit headers. It only
// reports: requests are never blocked, throttled or retried on its account,
// consistent with the zero-retry propagation policy.
type RateLimitObserver struct {
	mu     sync.Mutex
	state  RateLimitState
	logger zerolog.Logger
}

// NewRateLimitObserver creates an observer with no state yet.
func NewRateLimitObserver(logger zerolog.Logger) *RateLimitObserver {
	return &RateLimitObserver{
		state:  RateLimitState{Remaining: -1},
		logger: logger,
	}
}

// UpdateFromHeaders refreshes the state from a response's rate limit
// headers. Responses without the headers leave the state untouched.
func (o *RateLimitObserver) UpdateFromHeaders(h http.Header) {
	remainingStr := h.Get(headerRateLimitRemaining)
	if remainingStr == "" {
		return
	}
	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return
	}

	o.mu.Lock()
	o.state.Remaining = remaining
	o.state.LastUpdate = time.Now()
	if resetStr := h.Get(headerRateLimitReset); resetStr != "" {
		if seconds, err := strconv.Atoi(resetStr); err == nil {
			o.state.ResetAt = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}
	state := o.state
	o.mu.Unlock()

	rateLimitRemaining.Set(float64(remaining))

	if remaining < RateLimitWarning {
		o.logger.Warn().
			Int("remaining", remaining).
			Dur("reset_in", state.TimeUntilReset()).
			Msg("Admin API rate limit running low")
	}
}

// State returns a copy of the current state.
func (o *RateLimitObserver) State() RateLimitState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}
