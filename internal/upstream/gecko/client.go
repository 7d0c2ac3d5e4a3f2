// internal/upstream/gecko/client.go
package gecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL   = "https://api.geckoterminal.com/api/v2"
	defaultRateLimit = 30 // requests per minute on the free tier
	network          = "solana"
)

// Config carries endpoint and limit overrides for tests.
type Config struct {
	BaseURL   string
	RateLimit int
	Timeout   time.Duration
}

// Pool is a trading pool for a token, as reported by the pools endpoint.
type Pool struct {
	Address    string
	ReserveUSD float64
	Volume24h  float64
}

// Candle is one OHLCV entry: [timestampSeconds, open, high, low, close, volume].
type Candle struct {
	Timestamp int64
	Close     float64
}

// Client talks to the GeckoTerminal v2 API for pool resolution and OHLCV
// chart data.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *time.Ticker
	logger      *zap.Logger
}

// NewClient creates a GeckoTerminal API client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		rateLimiter: time.NewTicker(time.Minute / time.Duration(cfg.RateLimit)),
		logger:      logger.Named("geckoterminal"),
	}
}

// Close stops the rate limiter ticker.
func (c *Client) Close() {
	c.rateLimiter.Stop()
}

type poolsResponse struct {
	Data []struct {
		Attributes struct {
			Address      string `json:"address"`
			ReserveInUSD string `json:"reserve_in_usd"`
			VolumeUSD    struct {
				H24 string `json:"h24"`
			} `json:"volume_usd"`
		} `json:"attributes"`
	} `json:"data"`
}

// TokenPools lists pools trading the given mint.
func (c *Client) TokenPools(ctx context.Context, mint string) ([]Pool, error) {
	u := fmt.Sprintf("%s/networks/%s/tokens/%s/pools", c.baseURL, network, mint)

	body, err := c.doGet(ctx, u)
	if err != nil {
		return nil, err
	}

	var resp poolsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode pools response: %w", err)
	}

	pools := make([]Pool, 0, len(resp.Data))
	for _, d := range resp.Data {
		reserve, _ := strconv.ParseFloat(d.Attributes.ReserveInUSD, 64)
		volume, _ := strconv.ParseFloat(d.Attributes.VolumeUSD.H24, 64)
		pools = append(pools, Pool{
			Address:    d.Attributes.Address,
			ReserveUSD: reserve,
			Volume24h:  volume,
		})
	}
	return pools, nil
}

type ohlcvResponse struct {
	Data struct {
		Attributes struct {
			OhlcvList [][]float64 `json:"ohlcv_list"`
		} `json:"attributes"`
	} `json:"data"`
}

// OHLCV fetches candles for a pool at the given interval ("minute", "hour",
// "day"), aggregated by 5.
func (c *Client) OHLCV(ctx context.Context, poolAddress, interval string) ([]Candle, error) {
	u := fmt.Sprintf("%s/networks/%s/pools/%s/ohlcv/%s?aggregate=5", c.baseURL, network, poolAddress, interval)

	body, err := c.doGet(ctx, u)
	if err != nil {
		return nil, err
	}

	var resp ohlcvResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode ohlcv response: %w", err)
	}

	candles := make([]Candle, 0, len(resp.Data.Attributes.OhlcvList))
	for _, row := range resp.Data.Attributes.OhlcvList {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, Candle{
			Timestamp: int64(row[0]),
			Close:     row[4],
		})
	}
	return candles, nil
}

func (c *Client) doGet(ctx context.Context, url string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter.C:
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// StatusError is a non-200 GeckoTerminal response. 429 means the free-tier
// rate limit was hit; callers with a cache serve stale data instead.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geckoterminal: unexpected status %d", e.Status)
}
