// Package hass reads the dashboard sensor from the Home Assistant REST API.
package hass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/koios/epaper-weather/pkg/models"
	"go.uber.org/zap"
)

const (
	defaultTimeout         = 15 * time.Second
	defaultMaxResponseSize = 64 << 10
	userAgent              = "epaper-weather/1.0"
)

// emptyState is what callers see when the state could not be fetched
var emptyState = []byte("{}")

// ErrEmptyEndpoint indicates no state URL was configured
var ErrEmptyEndpoint = errors.New("hass: endpoint is required")

// ErrResponseTooLarge indicates the state body exceeded the configured limit
var ErrResponseTooLarge = errors.New("hass: response too large")

// StatusError captures non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("hass: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("hass: unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsAuthError reports whether err is a 401 or 403 response
func IsAuthError(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
	}
	return false
}

// Client fetches one entity state
type Client struct {
	endpoint        string
	token           string
	http            *http.Client
	maxResponseSize int64
	logger          *zap.Logger
}

// ClientOption mutates the client during construction
type ClientOption func(*Client)

// WithHTTPClient installs a custom http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout of the default http.Client
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithMaxResponseSize caps the bytes read from a response
func WithMaxResponseSize(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseSize = n
		}
	}
}

// NewClient builds a client for the state URL of one entity.
// The token gets a "Bearer " prefix unless it already carries one.
func NewClient(endpoint, token string, logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	c := &Client{
		endpoint:        endpoint,
		token:           bearer(token),
		http:            &http.Client{Timeout: defaultTimeout},
		maxResponseSize: defaultMaxResponseSize,
		logger:          logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	return c, nil
}

func bearer(token string) string {
	token = strings.TrimSpace(token)
	if token == "" || strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}

// Get returns the raw state body; non-2xx responses are a *StatusError
func (c *Client) Get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// one byte past the limit tells a full body from a cut one
	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := strings.TrimSpace(string(raw))
		if len(body) > 200 {
			body = body[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if int64(len(raw)) > c.maxResponseSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, c.maxResponseSize)
	}

	return raw, nil
}

// FetchState returns the state body, or "{}" on any failure.
// Failures are logged and never returned.
func (c *Client) FetchState(ctx context.Context) []byte {
	raw, err := c.Get(ctx)
	if err != nil {
		c.logger.Warn("Failed to fetch state, rendering defaults",
			zap.String("endpoint", c.endpoint),
			zap.Bool("auth_error", IsAuthError(err)),
			zap.Bool("too_large", errors.Is(err, ErrResponseTooLarge)),
			zap.Error(err))
		return emptyState
	}
	return raw
}

// Fetch returns the dashboard snapshot; a failed fetch or malformed body
// yields the all-default snapshot.
func (c *Client) Fetch(ctx context.Context) models.DashboardSnapshot {
	snap, err := models.DecodeSnapshot(c.FetchState(ctx))
	if err != nil {
		c.logger.Warn("Malformed state payload, rendering defaults", zap.Error(err))
	}
	return snap
}
