// internal/upstream/jupiter/tokens.go
package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// TokenInfo is one entry of the Jupiter token list.
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

// TokenList fetches the full token list. The payload is large and the
// endpoint occasionally flakes, so transient failures are retried briefly;
// metadata is cosmetic and callers have their own fallback chain anyway.
func (c *Client) TokenList(ctx context.Context) ([]TokenInfo, error) {
	op := func() ([]TokenInfo, error) {
		status, body, err := c.doGet(ctx, c.tokenListURL)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			upErr := &UpstreamError{Status: status, Body: string(body), Message: parseErrorMessage(body)}
			if status >= 400 && status < 500 && status != 429 {
				return nil, backoff.Permanent(upErr)
			}
			return nil, upErr
		}

		var tokens []TokenInfo
		if err := json.Unmarshal(body, &tokens); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode token list: %w", err))
		}
		return tokens, nil
	}

	tokens, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch token list: %w", err)
	}

	c.logger.Debug("token list fetched", zap.Int("count", len(tokens)))
	return tokens, nil
}

// Search queries the Ultra API for token candidates matching query, typically
// a mint address that is missing from the main list.
func (c *Client) Search(ctx context.Context, query string) ([]TokenInfo, error) {
	u := fmt.Sprintf("%s?query=%s", c.searchURL, url.QueryEscape(query))

	status, body, err := c.doGet(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("search tokens: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, &UpstreamError{Status: status, Body: string(body), Message: parseErrorMessage(body)}
	}

	var tokens []TokenInfo
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return tokens, nil
}
