package fetch

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerDoer gates a Doer behind a circuit breaker. It performs no retries:
// while the breaker is open, calls fail fast without touching the network.
type BreakerDoer struct {
	doer Doer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerDoer wraps d with a breaker that opens after three consecutive
// failures and probes again after one minute.
func NewBreakerDoer(d Doer, name string) *BreakerDoer {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &BreakerDoer{doer: d, cb: cb}
}

func (b *BreakerDoer) Do(req *http.Request) (*http.Response, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.doer.Do(req)
	})
	if err != nil {
		return nil, err
	}
	resp, _ := res.(*http.Response)
	return resp, nil
}
