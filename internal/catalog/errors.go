package catalog

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection reset, unreachable host)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the upstream refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates a non-2xx status from the upstream
	ErrTypeHTTP
	// ErrTypeNotFound indicates the requested gift or asset does not exist
	ErrTypeNotFound
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every Client call that fails
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	URL        string    // Requested URL (for context)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the request may succeed if repeated
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a more specific error
func ClassifyNetworkError(err error) *Error {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &Error{Type: ErrTypeTimeout, Message: "request timed out", Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:       err,
			Retryable: dnsErr.IsTemporary,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &Error{Type: ErrTypeConnectionRefused, Message: "upstream refused connection", Err: err, Retryable: true}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		if inner := ClassifyNetworkError(urlErr.Err); inner != nil && inner.Type != ErrTypeNetwork {
			inner.Err = err
			return inner
		}
	}

	return &Error{Type: ErrTypeNetwork, Message: "network error occurred", Err: err, Retryable: true}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *Error {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &Error{Type: ErrTypeNetwork, Message: message, Retryable: true}
	}
	classified.Message = message
	return classified
}

// NewHTTPError creates an HTTP-level error. Server errors and 429 are retryable.
func NewHTTPError(statusCode int, target string) *Error {
	if statusCode == http.StatusNotFound {
		return &Error{
			Type:       ErrTypeNotFound,
			Message:    fmt.Sprintf("%s not found", target),
			StatusCode: statusCode,
			URL:        target,
		}
	}
	return &Error{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("unexpected status %d from %s", statusCode, target),
		StatusCode: statusCode,
		URL:        target,
		Retryable:  statusCode >= 500 || statusCode == http.StatusTooManyRequests,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *Error {
	return &Error{Type: ErrTypeParse, Message: message, Err: err}
}

func asError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	e, ok := asError(err)
	if !ok {
		return false
	}
	switch e.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsNotFound checks if an error reports a missing gift or asset
func IsNotFound(err error) bool {
	e, ok := asError(err)
	return ok && e.Type == ErrTypeNotFound
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	e, ok := asError(err)
	return ok && e.Type == ErrTypeParse
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	e, ok := asError(err)
	return ok && e.Retryable
}

// StatusCode returns the upstream HTTP status carried by err, or 0
func StatusCode(err error) int {
	if e, ok := asError(err); ok {
		return e.StatusCode
	}
	return 0
}

// GetTroubleshootingHint returns user-friendly advice for an error
func GetTroubleshootingHint(err error) string {
	e, ok := asError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The catalog did not respond in time.",
			"Troubleshooting:",
			"  • Check your internet connection",
			"  • Try again in a moment",
			"  • Increase client_timeout in the config file",
		}, "\n")
	case ErrTypeConnectionRefused, ErrTypeDNS, ErrTypeNetwork:
		return strings.Join([]string{
			"The catalog could not be reached.",
			"Troubleshooting:",
			"  • Check your internet connection",
			"  • Verify api_base and cdn_base in the config file",
			"  • If you use a giftgrid server as proxy, check that it is running",
		}, "\n")
	case ErrTypeNotFound:
		return "The catalog has no entry with that name. Check the spelling of the gift."
	case ErrTypeHTTP:
		if e.StatusCode >= 500 {
			return fmt.Sprintf("The catalog returned a server error (HTTP %d). Try again later.", e.StatusCode)
		}
		return fmt.Sprintf("The catalog rejected the request (HTTP %d).", e.StatusCode)
	case ErrTypeParse:
		return "The catalog returned data in an unexpected format."
	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise message suitable for a status line
func GetShortErrorMessage(err error) string {
	e, ok := asError(err)
	if !ok {
		if err == nil {
			return ""
		}
		return err.Error()
	}

	switch e.Type {
	case ErrTypeTimeout:
		return "catalog timed out"
	case ErrTypeConnectionRefused:
		return "catalog refused connection"
	case ErrTypeDNS:
		return "catalog host not found"
	case ErrTypeNetwork:
		return "catalog unreachable"
	case ErrTypeNotFound:
		return "not in catalog"
	case ErrTypeHTTP:
		return fmt.Sprintf("catalog error (HTTP %d)", e.StatusCode)
	case ErrTypeParse:
		return "unexpected catalog response"
	default:
		return e.Message
	}
}
