package crypto

import (
	"context"
	"net/url"

	"skyquote/internal/fetch"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3/simple/price"

// Invoker performs a classified GET and returns the decoded JSON object.
//
//go:generate mockgen -package=crypto_test -destination=mock_invoker_test.go -source=client.go Invoker
type Invoker interface {
	GetJSON(ctx context.Context, endpoint string, params url.Values) (map[string]any, error)
}

// Client queries the simple-price endpoint. Quotes are always in USD.
type Client struct {
	baseURL string
	invoker Invoker
}

// Option is a configuration option for the crypto client.
type Option func(*Client)

// WithBaseURL overrides the endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithInvoker sets the transport invoker.
func WithInvoker(inv Invoker) Option {
	return func(c *Client) {
		c.invoker = inv
	}
}

// NewClient creates a crypto price client.
func NewClient(options ...Option) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		invoker: fetch.NewInvoker(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}
