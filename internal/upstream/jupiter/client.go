// internal/upstream/jupiter/client.go
package jupiter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL      = "https://lite-api.jup.ag"
	defaultTokenListURL = "https://token.jup.ag/all"
	defaultSearchURL    = "https://ultra-api.jup.ag/search"
	defaultRateLimit    = 300 // requests per minute
)

// Config carries the endpoints and limits for the Jupiter client. Zero values
// fall back to production defaults; tests point the URLs at httptest servers.
type Config struct {
	BaseURL      string
	TokenListURL string
	SearchURL    string
	RateLimit    int
	Timeout      time.Duration

	// PriorityFeeLamports, when non-zero, is sent with every swap-build
	// request. Zero leaves the fee field out entirely.
	PriorityFeeLamports uint64
}

// UpstreamError is a non-success HTTP response from Jupiter. Message holds the
// parsed upstream error field when the body was structured JSON, otherwise the
// trimmed raw body.
type UpstreamError struct {
	Status  int
	Message string
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("jupiter: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("jupiter: unexpected status %d", e.Status)
}

// Client talks to the Jupiter lite API: price v3, the token list and the
// swap v1 quote/swap endpoints.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokenListURL string
	searchURL    string
	rateLimiter  *time.Ticker
	priorityFee  *uint64
	logger       *zap.Logger
}

// NewClient creates a Jupiter API client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenListURL == "" {
		cfg.TokenListURL = defaultTokenListURL
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultSearchURL
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	var priorityFee *uint64
	if cfg.PriorityFeeLamports > 0 {
		fee := cfg.PriorityFeeLamports
		priorityFee = &fee
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		tokenListURL: cfg.TokenListURL,
		searchURL:    cfg.SearchURL,
		rateLimiter:  time.NewTicker(time.Minute / time.Duration(cfg.RateLimit)),
		priorityFee:  priorityFee,
		logger:       logger.Named("jupiter"),
	}
}

// Close stops the rate limiter ticker.
func (c *Client) Close() {
	c.rateLimiter.Stop()
}

// doGet performs a rate-limited GET and returns the status code and body.
func (c *Client) doGet(ctx context.Context, url string) (int, []byte, error) {
	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case <-c.rateLimiter.C:
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
