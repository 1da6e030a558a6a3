// Package errors provides error types and handling for the Shaarli client.
package errors

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType categorizes errors for handling decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Configuration represents missing or invalid credentials and settings.
	Configuration
	// Validation represents invalid endpoint names, parameters or resources.
	Validation
	// InvalidURL represents a malformed instance URI (scheme, host).
	InvalidURL
	// Network represents network-related errors (DNS, connection).
	Network
	// Timeout represents timeout errors.
	Timeout
	// TLS represents certificate verification and handshake failures.
	TLS
	// Cancelled represents context cancellation.
	Cancelled
	// Auth represents authentication/authorization errors (401, 403).
	Auth
	// NotFound represents 404 errors.
	NotFound
	// ClientError represents 4xx errors (except 401, 403, 404).
	ClientError
	// ServerError represents 5xx errors.
	ServerError
	// Parse represents response decoding errors.
	Parse
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Configuration:
		return "configuration"
	case Validation:
		return "validation"
	case InvalidURL:
		return "invalid_url"
	case Network:
		return "network"
	case Timeout:
		return "timeout"
	case TLS:
		return "tls"
	case Cancelled:
		return "cancelled"
	case Auth:
		return "auth"
	case NotFound:
		return "not_found"
	case ClientError:
		return "client_error"
	case ServerError:
		return "server_error"
	case Parse:
		return "parse"
	default:
		return "unknown"
	}
}

// IsTransport reports whether errors of this type come from sending a request.
func (t ErrorType) IsTransport() bool {
	switch t {
	case InvalidURL, Network, Timeout, TLS, Cancelled:
		return true
	default:
		return false
	}
}

// Error represents a categorized client error.
type Error struct {
	Type       ErrorType
	Endpoint   string
	URL        string
	Operation  string
	Message    string
	Cause      error
	StatusCode int
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(" error")
	if e.Operation != "" {
		b.WriteString(" during ")
		b.WriteString(e.Operation)
	}
	if e.Endpoint != "" {
		fmt.Fprintf(&b, " for endpoint '%s'", e.Endpoint)
	}
	if e.URL != "" {
		b.WriteString(" on ")
		b.WriteString(e.URL)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a new Error.
func New(errType ErrorType, operation, message string, cause error) *Error {
	return &Error{
		Type:      errType,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string) *Error {
	return New(Configuration, "", message, nil)
}

// NewConfigurationErrorf creates a configuration error with a formatted message.
func NewConfigurationErrorf(format string, args ...interface{}) *Error {
	return NewConfigurationError(fmt.Sprintf(format, args...))
}

// NewValueError creates a validation error for a single bad value.
func NewValueError(endpoint, message string) *Error {
	err := New(Validation, "", message, nil)
	err.Endpoint = endpoint
	return err
}

// NewInvalidURLError creates an error for a malformed instance URI.
func NewInvalidURLError(url, message string) *Error {
	err := New(InvalidURL, "url_check", message, nil)
	err.URL = url
	return err
}

// NewNetworkError creates a network error.
func NewNetworkError(url, operation string, cause error) *Error {
	err := New(Network, operation, "network failure", cause)
	err.URL = url
	return err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(url, operation string, cause error) *Error {
	err := New(Timeout, operation, "request timed out", cause)
	err.URL = url
	return err
}

// NewTLSError creates a TLS error.
func NewTLSError(url, operation string, cause error) *Error {
	err := New(TLS, operation, "TLS verification failed", cause)
	err.URL = url
	return err
}

// NewCancelledError creates a cancelled error.
func NewCancelledError(url, operation string) *Error {
	err := New(Cancelled, operation, "operation cancelled", nil)
	err.URL = url
	return err
}

// NewParseError creates a parse error.
func NewParseError(operation string, cause error) *Error {
	return New(Parse, operation, "parsing failed", cause)
}

// ValidationError is returned when parameters that an endpoint does not
// declare are supplied. Keys holds every offending parameter name.
type ValidationError struct {
	Endpoint string
	Keys     []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid parameters for endpoint '%s': %s",
		e.Endpoint, strings.Join(e.Keys, ", "))
}

// NewValidationError creates a ValidationError.
func NewValidationError(endpoint string, keys []string) *ValidationError {
	return &ValidationError{Endpoint: endpoint, Keys: keys}
}

// Categorize determines the error type of a failed HTTP round trip.
func Categorize(err error, url string) *Error {
	if err == nil {
		return nil
	}

	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr
	}

	if errors.Is(err, context.Canceled) {
		return NewCancelledError(url, "request")
	}

	if isTimeout(err) {
		return NewTimeoutError(url, "request", err)
	}

	if isTLSError(err) {
		return NewTLSError(url, "request", err)
	}

	if isNetworkError(err) {
		return NewNetworkError(url, "request", err)
	}

	err2 := New(Unknown, "request", err.Error(), err)
	err2.URL = url
	return err2
}

// CategorizeHTTPStatus creates an error from an HTTP status code.
func CategorizeHTTPStatus(statusCode int, url string) *Error {
	var err *Error
	switch {
	case statusCode == 401:
		err = New(Auth, "request", "unauthorized", nil)
	case statusCode == 403:
		err = New(Auth, "request", "forbidden", nil)
	case statusCode == 404:
		err = New(NotFound, "request", "resource not found", nil)
	case statusCode >= 500:
		err = New(ServerError, "request", fmt.Sprintf("server returned %d", statusCode), nil)
	case statusCode >= 400:
		err = New(ClientError, "request", fmt.Sprintf("client error %d", statusCode), nil)
	default:
		return nil
	}
	err.URL = url
	err.StatusCode = statusCode
	return err
}

// isTimeout checks if an error is a timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// isTLSError checks if an error comes from certificate verification or the handshake.
func isTLSError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return true
	}

	var authorityErr x509.UnknownAuthorityError
	if errors.As(err, &authorityErr) {
		return true
	}

	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}

	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &invalidErr) {
		return true
	}

	var recordErr tls.RecordHeaderError
	return errors.As(err, &recordErr)
}

// isNetworkError checks if an error is network-related.
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp")
}

// GetErrorType extracts the error type from an error.
func GetErrorType(err error) ErrorType {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Type
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return Validation
	}
	return Unknown
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return GetErrorType(err) == Configuration
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return GetErrorType(err) == Validation
}

// IsTransport checks if an error happened while sending a request.
func IsTransport(err error) bool {
	return GetErrorType(err).IsTransport()
}
