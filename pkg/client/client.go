// Package client provides the admin API HTTP transport with tenant
// authentication, error classification, and request metrics.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for admin API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_requests_total",
		Help: "Total admin API requests by route and status",
	}, []string{"route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adminapi_request_duration_seconds",
		Help:    "Admin API request duration in seconds by route",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_errors_total",
		Help: "Total admin API errors by class",
	}, []string{"class"})
)

// DefaultTimeout is the fixed wall-clock timeout applied to every call.
// There is no per-operation override.
const DefaultTimeout = 30 * time.Second

// Config holds the transport configuration.
type Config struct {
	// BaseURL is the admin API root, e.g. https://api.example.com/admin.
	BaseURL string

	// Token is the bearer credential sent with every request.
	Token string

	// Domain is the tenant-discriminating store domain, sent as the
	// domain-name header with every request.
	Domain string

	// Timeout is the fixed per-call timeout (default: DefaultTimeout).
	Timeout time.Duration

	// UserAgent identifies the console build.
	UserAgent string
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, token, domain string) Config {
	return Config{
		BaseURL:   baseURL,
		Token:     token,
		Domain:    domain,
		Timeout:   DefaultTimeout,
		UserAgent: "storefront-adminapi/1.0",
	}
}

// Client is the admin API transport. Every operation performs exactly one
// network round trip; there are no automatic retries.
type Client struct {
	httpClient *http.Client
	config     Config
	rateLimit  *RateLimitObserver
	logger     zerolog.Logger
}

// New creates a new transport client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Domain == "" {
		return nil, fmt.Errorf("domain is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	logger := log.With().Str("component", "adminapi-client").Str("domain", cfg.Domain).Logger()

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		rateLimit:  NewRateLimitObserver(logger),
		logger:     logger,
	}, nil
}

// RateLimit returns the observed rate-limit state.
func (c *Client) RateLimit() RateLimitState {
	return c.rateLimit.State()
}

// Do performs one request and returns the decoded response body. A nil body
// skips the request payload; query may be nil.
//
// Errors are classified but never retried here: 404 wraps ErrNotFound, other
// 4xx become validation errors with the server's structured message, 5xx
// become server errors, transport failures become network errors.
func (c *Client) Do(ctx context.Context, method, route string, query url.Values, body any) (json.RawMessage, error) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}()

	u := strings.TrimSuffix(c.config.BaseURL, "/") + route
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("domain-name", c.config.Domain)
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("method", method).
		Str("route", route).
		Str("request_id", requestID).
		Msg("Executing admin API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(route, "network_error").Inc()
		c.logger.Error().Err(err).Str("route", route).Str("request_id", requestID).Msg("Request failed")
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Route:   route,
			Message: "transport failure",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	c.rateLimit.UpdateFromHeaders(resp.Header)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(route, "network_error").Inc()
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Route:   route,
			Message: "read response body",
			Err:     err,
		}
	}

	requestsTotal.WithLabelValues(route, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()

		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Route:      route,
			Message:    errorMessage(data, resp.Status),
		}
		if class == ErrorClassNotFound {
			apiErr.Err = ErrNotFound
		}

		// 401 is surfaced like any other validation error; session handling
		// is the console's concern, not the transport's.
		c.logger.Warn().
			Str("route", route).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Str("request_id", requestID).
			Msg("Admin API request error")
		return nil, apiErr
	}

	return data, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, route string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, route, query, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, route string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, route, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, route string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, route, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, route string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, route, nil, nil)
}

// errorMessage extracts the structured message from a 4xx/5xx body, falling
// back to the HTTP status line.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fallback
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
