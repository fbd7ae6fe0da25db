package givehub

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// DefaultRetryPolicy is the retry condition installed on the client's resty
// transport. It only takes effect once retries are enabled with
// [WithRetryCount]. It retries on HTTP 429 and 5xx responses and on transient
// connection errors, never on context cancellation, deadline exceeded or DNS
// resolution failures.
//
// Supply a custom function via [WithRetryPolicy] to override this behaviour.
// File uploads are never retried this way.
func DefaultRetryPolicy(r *resty.Response, err error) bool {
	if err != nil {
		// Don't retry on context cancellation or deadline exceeded
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}

		// Don't retry on DNS resolution errors
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return false
		}

		// Retry on other connection errors
		return true
	}

	if r == nil {
		return false
	}

	switch status := r.StatusCode(); {
	case status == http.StatusUnauthorized:
		// Expired tokens are refreshed and retried once by the client itself
		return false
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		// Retry on 429 (rate limit) and 5xx (server errors)
		return true
	default:
		return false
	}
}
