package crypto

import (
	"context"
	"net/url"
	"strings"
)

// Quote is the normalized price record for one asset. MarketCapUSD and
// Volume24hUSD are nil when the upstream omits them; a missing 24h change
// defaults to zero.
type Quote struct {
	PriceUSD     float64  `json:"price_usd"`
	Change24hPct float64  `json:"change_24h_pct"`
	MarketCapUSD *float64 `json:"market_cap_usd"`
	Volume24hUSD *float64 `json:"volume_24h_usd"`
}

// Prices fetches USD quotes for the given asset ids. Only ids present in
// both the request and the response yield a quote: unknown ids are dropped,
// and a present id whose price is missing is skipped rather than failing
// the batch. An empty id list returns an empty map without a network call.
func (c *Client) Prices(ctx context.Context, ids []string) (map[string]Quote, error) {
	quotes := make(map[string]Quote, len(ids))
	if len(ids) == 0 {
		return quotes, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")
	params.Set("include_market_cap", "true")
	params.Set("include_24hr_vol", "true")

	tree, err := c.invoker.GetJSON(ctx, c.baseURL, params)
	if err != nil {
		return nil, err
	}

	// Iterate the requested ids, not the response keys.
	for _, id := range ids {
		entry, ok := tree[id].(map[string]any)
		if !ok {
			continue
		}
		price, ok := entry["usd"].(float64)
		if !ok {
			continue
		}
		quote := Quote{PriceUSD: price}
		if v, ok := entry["usd_24h_change"].(float64); ok {
			quote.Change24hPct = v
		}
		if v, ok := entry["usd_market_cap"].(float64); ok {
			quote.MarketCapUSD = &v
		}
		if v, ok := entry["usd_24h_vol"].(float64); ok {
			quote.Volume24hUSD = &v
		}
		quotes[id] = quote
	}
	return quotes, nil
}
