package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"skyquote/internal/httpx"
)

// Doer performs a single HTTP exchange.
//
//go:generate mockgen -package=fetch_test -destination=mock_doer_test.go -source=fetch.go Doer
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Invoker performs one GET against an endpoint and classifies the outcome.
// It holds no per-call state; a single instance is shared by all clients.
type Invoker struct {
	doer      Doer
	userAgent string
}

// Option is a configuration option for an Invoker.
type Option func(*Invoker)

// WithDoer sets the underlying HTTP client.
func WithDoer(d Doer) Option {
	return func(i *Invoker) {
		i.doer = d
	}
}

// WithUserAgent sets the User-Agent sent with each request.
func WithUserAgent(ua string) Option {
	return func(i *Invoker) {
		i.userAgent = ua
	}
}

// NewInvoker creates an Invoker with a default 10-second client.
func NewInvoker(options ...Option) *Invoker {
	inv := &Invoker{
		doer:      httpx.New(httpx.DefaultTimeout),
		userAgent: "skyquote/1.0",
	}
	for _, option := range options {
		option(inv)
	}
	return inv
}

// GetJSON issues a GET with the given query parameters and returns the
// decoded JSON object on a 200 response. Failures come back classified:
// ErrTimeout, ErrConnection, *StatusError for a non-200 status (the body is
// not parsed), or a wrapped error carrying the underlying message.
func (i *Invoker) GetJSON(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if i.userAgent != "" {
		req.Header.Set("User-Agent", i.userAgent)
	}

	res, err := i.doer.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		return nil, &StatusError{Code: res.StatusCode}
	}

	var tree map[string]any
	if err := json.NewDecoder(res.Body).Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return tree, nil
}
