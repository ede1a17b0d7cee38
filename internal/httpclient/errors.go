package httpclient

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrClientClosed is returned for requests issued after Close.
	ErrClientClosed = errors.New("client closed")

	// ErrCircuitOpen is returned while the upstream's circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// TransportError reports a connection, DNS or timeout failure.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a non-success HTTP response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.Status, e.Body)
}

// MalformedDataError reports a response missing expected fields or not decodable.
type MalformedDataError struct {
	Source string
	Reason string
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed %s data: %s", e.Source, e.Reason)
}

// IsTransport reports whether err is or wraps a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsUpstream reports whether err is or wraps an *UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsMalformed reports whether err is or wraps a *MalformedDataError.
func IsMalformed(err error) bool {
	var me *MalformedDataError
	return errors.As(err, &me)
}

// IsCallerCancelled reports whether err is the caller's context ending rather
// than an upstream failure. Client timeouts stay *TransportError.
func IsCallerCancelled(err error) bool {
	if IsTransport(err) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsCallerCancelled(err):
		return "cancelled"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case IsUpstream(err):
		return "upstream"
	case IsMalformed(err):
		return "malformed"
	case IsTransport(err):
		return "transport"
	default:
		return "other"
	}
}
