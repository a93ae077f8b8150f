package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retries made for one operation.
type Policy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultPolicy returns the policy used by loaders and LLM clients.
func DefaultPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:      maxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsedTime:  30 * time.Second,
	}
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// IsRetryableStatus reports whether an HTTP status is worth retrying.
func IsRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Classifier decides whether an error is transient.
type Classifier func(error) bool

// IsTransient treats network errors and retryable statuses as transient.
// Context cancellation never is.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return IsRetryableStatus(statusErr.StatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Do runs op until it succeeds, returns a non-transient error, or the policy
// is exhausted. The last error is returned unwrapped.
func Do[T any](ctx context.Context, p Policy, transient Classifier, op func() (T, error)) (T, error) {
	if transient == nil {
		transient = IsTransient
	}

	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		bo.MaxInterval = p.MaxInterval
	}
	bo.MaxElapsedTime = p.MaxElapsedTime

	operation := func() (T, error) {
		result, err := op()
		if err != nil && !transient(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	var policy backoff.BackOff = bo
	if p.MaxRetries >= 0 {
		policy = backoff.WithMaxRetries(bo, uint64(p.MaxRetries))
	}

	return backoff.RetryWithData(operation, backoff.WithContext(policy, ctx))
}
