package httpclient

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
)

// BreakerTransport wraps a RoundTripper with a circuit breaker. Once the
// upstream fails often enough the breaker opens and requests fail fast with
// ErrServiceUnavail instead of piling onto a struggling dependency.
type BreakerTransport struct {
	breaker *gobreaker.CircuitBreaker[*http.Response]
	next    http.RoundTripper
}

// NewBreakerTransport creates a breaker-guarded transport. The breaker trips
// after 5 consecutive failures and probes again after 30 seconds.
func NewBreakerTransport(name string, log *slog.Logger, next http.RoundTripper) *BreakerTransport {
	if next == nil {
		next = http.DefaultTransport
	}

	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &BreakerTransport{
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		next:    next,
	}
}

// RoundTrip executes the request through the breaker. Transport errors and
// 5xx responses count as failures.
func (t *BreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.breaker.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, ErrServerStatus
		}
		return resp, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperrors.ErrServiceUnavail
	}
	if errors.Is(err, ErrServerStatus) {
		// 5xx still returns the response so the caller can inspect it.
		return resp, nil
	}

	return resp, err
}
