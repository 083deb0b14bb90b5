package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for the two transport failure classes callers care about.
// Anything that is neither of these nor a StatusError falls into the
// catch-all category and keeps its underlying message.
var (
	// ErrTimeout reports that the request exceeded its deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrConnection reports a DNS failure or a refused/unreachable host.
	ErrConnection = errors.New("connection failed")
)

// StatusError is returned for a completed exchange with a non-200 status.
// The response body is never parsed in that case.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// classify maps a transport-level error onto the sentinel taxonomy.
// Timeouts are checked first: a dial timeout is still a timeout.
func classify(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return fmt.Errorf("performing request: %w", err)
}
