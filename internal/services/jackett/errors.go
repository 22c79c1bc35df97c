// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransportTimeoutError is returned when an indexer query exceeds its timeout.
type TransportTimeoutError struct {
	Indexer string
	Err     error
}

func (e *TransportTimeoutError) Error() string {
	return fmt.Sprintf("indexer %s timed out: %v", e.Indexer, e.Err)
}

func (e *TransportTimeoutError) Unwrap() error { return e.Err }

func (e *TransportTimeoutError) Is(target error) bool {
	_, ok := target.(*TransportTimeoutError)
	return ok
}

// TransportError is a connection level failure or a non-success HTTP status.
// StatusCode is zero when no response was received.
type TransportError struct {
	Indexer    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("indexer %s returned status %d", e.Indexer, e.StatusCode)
	}
	return fmt.Sprintf("indexer %s request failed: %v", e.Indexer, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	_, ok := target.(*TransportError)
	return ok
}

// IsRateLimited returns true if this error indicates rate limiting (HTTP 429).
func (e *TransportError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// ProtocolError is a well-formed <error code="" description=""/> envelope.
type ProtocolError struct {
	Indexer     string
	Code        string
	Description string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("indexer %s returned error %s: %s", e.Indexer, e.Code, e.Description)
}

func (e *ProtocolError) Is(target error) bool {
	_, ok := target.(*ProtocolError)
	return ok
}

// ParseError is returned when a response body is not a feed, an indexer list or an error envelope.
type ParseError struct {
	Indexer string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("indexer %s returned malformed response: %v", e.Indexer, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

// classifyTransportError wraps a failed http.Client.Do error as a timeout or a connection error.
func classifyTransportError(indexer string, err error) error {
	if isTimeoutError(err) {
		return &TransportTimeoutError{Indexer: indexer, Err: err}
	}
	return &TransportError{Indexer: indexer, Err: err}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRateLimited(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr) && transportErr.IsRateLimited()
}

// outcomeLabel names the error kind for logs and metrics.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, &TransportTimeoutError{}):
		return "timeout"
	case errors.Is(err, &ProtocolError{}):
		return "protocol_error"
	case errors.Is(err, &ParseError{}):
		return "parse_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case isRateLimited(err):
		return "rate_limited"
	default:
		return "transport_error"
	}
}
