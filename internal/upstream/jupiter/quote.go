// internal/upstream/jupiter/quote.go
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// QuoteRequest describes one swap quote. The parameter order in the query
// string is fixed (inputMint, outputMint, amount, swapMode, slippageBps) so
// the same logical request always produces the same URL and cache key.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      string // integer base units
	SwapMode    string // "ExactIn" or "ExactOut"
	SlippageBps int
}

// Query renders the canonical query string.
func (r QuoteRequest) Query() string {
	var b strings.Builder
	b.WriteString("inputMint=")
	b.WriteString(url.QueryEscape(r.InputMint))
	b.WriteString("&outputMint=")
	b.WriteString(url.QueryEscape(r.OutputMint))
	b.WriteString("&amount=")
	b.WriteString(url.QueryEscape(r.Amount))
	b.WriteString("&swapMode=")
	b.WriteString(url.QueryEscape(r.SwapMode))
	b.WriteString(fmt.Sprintf("&slippageBps=%d", r.SlippageBps))
	return b.String()
}

// CacheKey returns a stable key for deduplicating identical quote requests.
func (r QuoteRequest) CacheKey() string {
	return r.Query()
}

// Quote is an upstream swap quote. Raw keeps the complete response for the
// swap-build call; the named fields are the ones this module inspects.
type Quote struct {
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`

	Raw json.RawMessage `json:"-"`
}

// ErrMalformedResponse means a 2xx quote body that was not a JSON object.
var ErrMalformedResponse = errors.New("quote response is not a valid JSON object")

// Quote requests a swap quote. Non-success responses come back as
// *UpstreamError with the upstream message extracted when possible.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	u := fmt.Sprintf("%s/swap/v1/quote?%s", c.baseURL, req.Query())

	status, body, err := c.doGet(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, &UpstreamError{Status: status, Body: string(body), Message: parseErrorMessage(body)}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedResponse
	}

	var q Quote
	if err := json.Unmarshal(trimmed, &q); err != nil {
		return nil, ErrMalformedResponse
	}
	q.Raw = json.RawMessage(trimmed)
	return &q, nil
}

// parseErrorMessage extracts the "error" field from a structured upstream
// error body. Returns the trimmed raw text when the body is not JSON.
func parseErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
