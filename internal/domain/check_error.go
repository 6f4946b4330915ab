package domain

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindInvalidJSON           ErrorKind = "InvalidJson"
	KindMissingURL            ErrorKind = "MissingUrl"
	KindInvalidURL            ErrorKind = "InvalidUrl"
	KindUnsupportedScheme     ErrorKind = "UnsupportedScheme"
	KindCredentialsNotAllowed ErrorKind = "CredentialsNotAllowed"
	KindLocalTargetBlocked    ErrorKind = "LocalTargetBlocked"
	KindBlockedHost           ErrorKind = "BlockedHost"
	KindPrivateNetworkBlocked ErrorKind = "PrivateNetworkBlocked"
	KindDNSResolutionFailed   ErrorKind = "DnsResolutionFailed"
	KindRateLimitExceeded     ErrorKind = "RateLimitExceeded"
	KindTimeout               ErrorKind = "Timeout"
	KindFetchFailed           ErrorKind = "FetchFailed"
)

var defaultMessages = map[ErrorKind]string{
	KindInvalidJSON:           "Invalid JSON body.",
	KindMissingURL:            "Missing url.",
	KindInvalidURL:            "Invalid URL.",
	KindUnsupportedScheme:     "Only http and https URLs are supported.",
	KindCredentialsNotAllowed: "URLs with embedded credentials are not allowed.",
	KindLocalTargetBlocked:    "Local targets are not allowed.",
	KindBlockedHost:           "This host is not allowed.",
	KindPrivateNetworkBlocked: "Private network targets are not allowed.",
	KindDNSResolutionFailed:   "Could not resolve target hostname.",
	KindRateLimitExceeded:     "Rate limit exceeded. Try again later.",
	KindTimeout:               "Request to target timed out.",
	KindFetchFailed:           "Failed to fetch target URL.",
}

// HTTPStatus maps an error kind to the status returned by the check endpoint.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case KindFetchFailed:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// CheckError is the single error type surfaced by the check pipeline.
// Message is safe to return to clients; Details carries the underlying
// transport error text for probe failures only.
type CheckError struct {
	Kind    ErrorKind
	Message string
	Details string
	Err     error
}

func (e *CheckError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// NewCheckError builds a CheckError with the default client message for kind.
func NewCheckError(kind ErrorKind, err error) *CheckError {
	return &CheckError{Kind: kind, Message: defaultMessages[kind], Err: err}
}

// NewProbeError builds a probe-stage error that exposes err's text as Details.
func NewProbeError(kind ErrorKind, err error) *CheckError {
	ce := NewCheckError(kind, err)
	if err != nil {
		ce.Details = err.Error()
	}
	return ce
}

// KindOf returns the ErrorKind carried by err, or "" when err is not a CheckError.
func KindOf(err error) ErrorKind {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
