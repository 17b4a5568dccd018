// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrLookupUnavailable matches, through errors.Is, every error a Geocoder
// returns. Callers degrade to "no suggestions" on it.
var ErrLookupUnavailable = errors.New("address lookup unavailable")

// ErrorType sub-classifies a LookupError for logs and metrics.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit the service throttled us.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exhausted or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the request did not finish in time.
	ErrorTypeTimeout
	// ErrorTypeNotFound the endpoint was not found.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the service rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError connection level failure or upstream outage.
	ErrorTypeNetworkError
	// ErrorTypeMalformed the body was not the expected JSON shape.
	ErrorTypeMalformed
	// ErrorTypeCanceled the caller gave up on the request.
	ErrorTypeCanceled
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:        "unknown",
	ErrorTypeRateLimit:      "rate_limit",
	ErrorTypeQuotaExceeded:  "quota_exceeded",
	ErrorTypeTimeout:        "timeout",
	ErrorTypeNotFound:       "not_found",
	ErrorTypeInvalidRequest: "invalid_request",
	ErrorTypeNetworkError:   "network",
	ErrorTypeMalformed:      "malformed",
	ErrorTypeCanceled:       "canceled",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// LookupError is the single failure class of an address lookup.
type LookupError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is reports every LookupError as ErrLookupUnavailable.
func (e *LookupError) Is(target error) bool {
	return target == ErrLookupUnavailable
}

// Unavailable wraps err into a LookupError, classifying it when it is not
// one already.
func Unavailable(message string, err error) error {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr
	}

	return &LookupError{Type: classify(err), Message: message, Err: err}
}

func classify(err error) ErrorType {
	var netErr net.Error

	switch {
	case err == nil:
		return ErrorTypeUnknown
	case errors.Is(err, context.Canceled):
		return ErrorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrorTypeTimeout
	case errors.As(err, &netErr):
		return ErrorTypeNetworkError
	default:
		return ErrorTypeUnknown
	}
}

// TypeOf returns the ErrorType of err, ErrorTypeUnknown when err is not a
// LookupError.
func TypeOf(err error) ErrorType {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Type
	}

	return ErrorTypeUnknown
}

// IsRateLimitError verifies if the error is due to throttling.
func IsRateLimitError(err error) bool {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError verifies if the error is due to an exhausted quota.
func IsQuotaExceededError(err error) bool {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Type == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError verifies if the error is due to a timeout.
func IsTimeoutError(err error) bool {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Type == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps a non 2xx status code to a LookupError.
func ClassifyHTTPError(statusCode int) *LookupError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &LookupError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden, http.StatusUnauthorized:
		return &LookupError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest:
		return &LookupError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound:
		return &LookupError{
			Type:    ErrorTypeNotFound,
			Message: "search endpoint not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &LookupError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &LookupError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
