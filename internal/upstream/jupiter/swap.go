// internal/upstream/jupiter/swap.go
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type swapRequest struct {
	QuoteResponse            json.RawMessage `json:"quoteResponse"`
	UserPublicKey            string          `json:"userPublicKey"`
	AsLegacyTransaction      bool            `json:"asLegacyTransaction"`
	DynamicComputeUnitLimit  bool            `json:"dynamicComputeUnitLimit"`
	PrioritizationFeeLamport *uint64         `json:"prioritizationFeeLamports,omitempty"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// BuildSwap asks Jupiter to assemble an unsigned swap transaction from a
// previously fetched quote. The result is the base64-encoded transaction blob
// to hand to the external signer; this module never parses it.
func (c *Client) BuildSwap(ctx context.Context, quote json.RawMessage, userPublicKey string) (string, error) {
	payload, err := json.Marshal(swapRequest{
		QuoteResponse:            quote,
		UserPublicKey:            userPublicKey,
		AsLegacyTransaction:      false,
		DynamicComputeUnitLimit:  true,
		PrioritizationFeeLamport: c.priorityFee,
	})
	if err != nil {
		return "", fmt.Errorf("encode swap request: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.rateLimiter.C:
	}

	u := c.baseURL + "/swap/v1/swap"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(body), Message: parseErrorMessage(body)}
	}

	var sr swapResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if sr.SwapTransaction == "" {
		return "", fmt.Errorf("no swap transaction in API response")
	}
	return sr.SwapTransaction, nil
}
