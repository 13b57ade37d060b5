package api

import (
	"context"
	"errors"
	"fmt"
)

// NetworkError means the request could not be sent or its response could not be read.
type NetworkError struct {
	Op    string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// ServerError is a non-2xx response. Detail carries the server's "detail" field when present.
type ServerError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
}

// ParseError means the response body was not the expected JSON.
type ParseError struct {
	Op    string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsCanceled reports whether err comes from a cancelled request context
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Kind names the taxonomy bucket of err, for logging
func Kind(err error) string {
	var netErr *NetworkError
	var srvErr *ServerError
	var parseErr *ParseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &srvErr):
		return "server"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "unknown"
	}
}
