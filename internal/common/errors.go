// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common application errors.
var (
	// Classifier errors.
	ErrMissingAPIKey        = errors.New("classifier API key not configured")
	ErrClassifierDisabled   = errors.New("external classifier disabled")
	ErrEmptyResponse        = errors.New("empty classifier response")
	ErrMalformedResponse    = errors.New("malformed classifier response")
	ErrClassificationFailed = errors.New("classification failed")

	// Import errors.
	ErrNoTransactions = errors.New("no transactions to process")
	ErrUnknownLayout  = errors.New("unrecognized spreadsheet layout")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
// Missing credentials and disabled capabilities are permanent and skip
// straight to the fallback path; rate limits, timeouts, connection errors
// and malformed responses are transient and worth another attempt.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrClassifierDisabled) {
		return false
	}

	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, ErrMalformedResponse) {
		return true
	}

	// Transport-level failures (connection refused/reset, DNS, timeouts)
	// reach us as net.Error from the HTTP client; *url.Error implements it.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
