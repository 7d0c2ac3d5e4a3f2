// internal/upstream/jupiter/price.go
package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// PriceEntry is one token's entry in the price v3 response. The API is
// inconsistent about the field name, so both candidates are kept as pointers
// and the caller selects whichever is present.
type PriceEntry struct {
	UsdPrice *float64 `json:"usdPrice"`
	Price    *float64 `json:"price"`
}

// GetPrice fetches the price entry for a single mint.
func (c *Client) GetPrice(ctx context.Context, mint string) (PriceEntry, error) {
	u := fmt.Sprintf("%s/price/v3?ids=%s", c.baseURL, url.QueryEscape(mint))

	status, body, err := c.doGet(ctx, u)
	if err != nil {
		return PriceEntry{}, fmt.Errorf("fetch price: %w", err)
	}
	if status < 200 || status >= 300 {
		return PriceEntry{}, &UpstreamError{Status: status, Body: string(body), Message: parseErrorMessage(body)}
	}

	var entries map[string]PriceEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return PriceEntry{}, fmt.Errorf("decode price response: %w", err)
	}
	return entries[mint], nil
}
