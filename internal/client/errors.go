package client

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationExpired is returned for HTTP 401 on a protected call.
	ErrAuthenticationExpired = errors.New("authentication expired or invalid")
	// ErrAuthorizationDenied is returned for HTTP 403.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrMalformedResponse wraps bodies that do not decode into the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is any other unexpected HTTP status. Detail carries the server's error or
// detail field when the body had one.
type StatusError struct {
	Code   int
	Detail string
	Body   []byte
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("status %d", e.Code)
}

// NetworkError is a transport failure; no HTTP response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
