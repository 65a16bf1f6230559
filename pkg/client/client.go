// Package client provides the core storefront HTTP client with error
// classification, bearer authentication, and request metrics.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for storefront client operations.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total storefront requests by endpoint and status",
	}, []string{"endpoint", "status"})

	catalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Storefront request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total storefront errors by class",
	}, []string{"class"})
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is the storefront API client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the storefront API (e.g. "https://api.example.com")
	BaseURL string

	// User-Agent header sent with every request
	UserAgent string

	// Tokens supplies bearer tokens for authenticated endpoints
	// (typically the session store). Optional.
	Tokens TokenSource

	// Timeout per request
	Timeout time.Duration

	// Retry. MaxRetries is the number of automatic retry attempts on
	// retriable failures; 0 disables automatic retries, which is the
	// default: retries in the storefront are user-initiated.
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		UserAgent:      "catalog-client/0.1.0",
		Timeout:        30 * time.Second,
		MaxRetries:     0,
		InitialBackoff: 1 * time.Second,
	}
}

// New creates a new storefront client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "storefront-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// Do performs an HTTP request with error classification and metrics.
// Non-2xx responses are returned as *APIError; the response is only
// returned for 2xx statuses.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	if c.config.Tokens != nil {
		if token := c.config.Tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing storefront request")

	var resp *http.Response
	var lastErr error

	attempt := func() error {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)

		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			lastErr = &APIError{
				Class:   ErrorClassNetwork,
				Message: "network unreachable",
				Err:     reqErr,
			}
			return lastErr
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			errClass := classifyStatus(resp.StatusCode)
			catalogErrorsTotal.WithLabelValues(string(errClass)).Inc()
			catalogRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Storefront request error")

			lastErr = &APIError{
				StatusCode: resp.StatusCode,
				Class:      errClass,
				Message:    readErrorMessage(resp),
			}
			resp.Body.Close()
			return lastErr
		}

		catalogRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil
	}

	if c.config.MaxRetries > 0 {
		retryCfg := RetryConfig{
			MaxAttempts:       c.config.MaxRetries + 1,
			InitialBackoff:    c.config.InitialBackoff,
			MaxBackoff:        30 * time.Second,
			BackoffMultiplier: 2.0,
		}
		if err := retryWithBackoff(ctx, retryCfg, attempt); err != nil {
			return nil, err
		}
	} else if err := attempt(); err != nil {
		return nil, err
	}

	return resp, nil
}

// Get performs a GET request against a storefront endpoint path.
func (c *Client) Get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// GetJSON performs a GET request and decodes the JSON body into v.
// A malformed body is returned as *APIError with ErrorClassDecode.
func (c *Client) GetJSON(ctx context.Context, endpoint string, v any) error {
	resp, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decode(endpoint, resp.Body, v)
}

// PostJSON performs a POST request with a JSON body and decodes the
// JSON response into v. v may be nil to discard the response body.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body any, v any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+endpoint, strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if v == nil {
		return nil
	}
	return c.decode(endpoint, resp.Body, v)
}

// decode reads and decodes a JSON body, classifying failures as decode
// errors.
func (c *Client) decode(endpoint string, body io.Reader, v any) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Malformed response body")
		catalogErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			Class:   ErrorClassDecode,
			Message: "malformed response body",
			Err:     err,
		}
	}
	return nil
}

// readErrorMessage extracts a short error message from a non-2xx body.
// The storefront returns either {"message": "..."} or plain text.
func readErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil || len(data) == 0 {
		return resp.Status
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}

	return strings.TrimSpace(string(data))
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
