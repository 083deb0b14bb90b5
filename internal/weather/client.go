package weather

import (
	"context"
	"net/url"

	"skyquote/internal/fetch"
)

const defaultBaseURL = "http://api.openweathermap.org/data/2.5/weather"

// Invoker performs a classified GET and returns the decoded JSON object.
//
//go:generate mockgen -package=weather_test -destination=mock_invoker_test.go -source=client.go Invoker
type Invoker interface {
	GetJSON(ctx context.Context, endpoint string, params url.Values) (map[string]any, error)
}

// Client queries the current-weather endpoint.
type Client struct {
	// baseURL is the absolute endpoint for current weather.
	baseURL string
	// apiKey is sent as the appid query parameter on every request.
	apiKey string
	// invoker performs the transport exchange.
	invoker Invoker
}

// Option is a configuration option for the weather client.
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

// NewClient creates a weather client for the given API key.
func NewClient(apiKey string, options ...Option) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		invoker: fetch.NewInvoker(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}
