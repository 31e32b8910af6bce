package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// StatusError is returned when the remote service answered with a non-2xx
// status. Body carries the (possibly truncated) response body for diagnostics.
type StatusError struct {
	// StatusCode is the HTTP status code returned by the service.
	StatusCode int
	// Body is the raw response body, truncated to a sane length.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// TransportError is returned when the request never produced an HTTP response:
// DNS failure, refused connection, timeout, reset. These are the failures the
// retry policy treats as transient.
type TransportError struct {
	// Err is the underlying network error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err represents a transient failure that a
// bounded retry with backoff may recover from. Transport-level errors,
// timeouts, and throttling/server-side HTTP statuses are retryable;
// everything else (bad request, auth, malformed payloads) is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return true
		}
		return se.StatusCode >= 500
	}
	return false
}
