package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies a failure for callers at the outer boundary.
type ErrorKind string

// Error kinds surfaced to callers.
const (
	// KindConfiguration covers missing credentials, unknown providers and
	// dimension mismatches. Fatal at startup or first call, never retried.
	KindConfiguration ErrorKind = "configuration_error"

	// KindProvider covers non-success responses and malformed payloads
	// from an embedding or completion backend.
	KindProvider ErrorKind = "provider_error"

	// KindTimeout covers outbound calls that exceeded their bound.
	KindTimeout ErrorKind = "timeout_error"

	// KindIndexNotFound means a search was attempted before any build.
	KindIndexNotFound ErrorKind = "index_not_found"

	// KindIndexInconsistent means only one of the two index artifacts is
	// present, or the pair does not belong to the same build.
	KindIndexInconsistent ErrorKind = "index_inconsistent"

	// KindExtractionParse means model output was not valid structured data.
	KindExtractionParse ErrorKind = "extraction_parse_error"

	// KindInputValidation covers empty, oversized or wrong-type input.
	KindInputValidation ErrorKind = "input_validation_error"

	// KindInternal is anything that does not carry a kind.
	KindInternal ErrorKind = "internal_error"
)

// Sentinels for errors.Is matching against an error kind.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrProvider          = errors.New("provider error")
	ErrTimeout           = errors.New("timeout")
	ErrIndexNotFound     = errors.New("index not found")
	ErrIndexInconsistent = errors.New("index inconsistent")
	ErrExtractionParse   = errors.New("extraction parse error")
	ErrInputValidation   = errors.New("input validation error")
)

// Domain errors that are not tied to a kind.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown provider or extractor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation and attribute extraction are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

var kindSentinels = map[ErrorKind]error{
	KindConfiguration:     ErrConfiguration,
	KindProvider:          ErrProvider,
	KindTimeout:           ErrTimeout,
	KindIndexNotFound:     ErrIndexNotFound,
	KindIndexInconsistent: ErrIndexInconsistent,
	KindExtractionParse:   ErrExtractionParse,
	KindInputValidation:   ErrInputValidation,
}

// Error is a classified failure. It wraps an optional cause and matches
// the sentinel of its kind under errors.Is.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// NewError creates a classified error.
func NewError(kind ErrorKind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// ConfigurationError creates a configuration error.
func ConfigurationError(op, message string) *Error {
	return NewError(KindConfiguration, op, message, nil)
}

// ProviderError creates a provider error wrapping err.
func ProviderError(op, message string, err error) *Error {
	return NewError(KindProvider, op, message, err)
}

// InputValidationError creates an input validation error.
func InputValidationError(op, message string) *Error {
	return NewError(KindInputValidation, op, message, nil)
}

// IndexNotFoundError is returned when no index has been built.
func IndexNotFoundError(op string) *Error {
	return NewError(KindIndexNotFound, op, "index has not been built; ingest a document first", nil)
}

// IndexInconsistentError is returned when the persisted pair does not match.
func IndexInconsistentError(op, message string) *Error {
	return NewError(KindIndexInconsistent, op, message, nil)
}

// TransportError classifies a failed outbound call. Deadline and network
// timeouts become KindTimeout, anything else KindProvider.
func TransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewError(KindTimeout, op, "request timed out", err)
	}
	return NewError(KindProvider, op, "request failed", err)
}

// StatusError is a non-success HTTP response from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string

	// RetryAfter is parsed from the Retry-After header on 429 responses.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 500 {
		body = body[:500] + "..."
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, body)
}

// Is matches ErrRateLimited for 429 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// ResponseError builds a provider error for a non-success response.
func ResponseError(op, provider string, resp *http.Response, body []byte) error {
	se := &StatusError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		se.RetryAfter = time.Duration(secs) * time.Second
	}
	return NewError(KindProvider, op, "non-success response", se)
}

// KindOf returns the kind of err, or KindInternal when err is unclassified.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	if errors.Is(err, ErrInvalidInput) {
		return KindInputValidation
	}
	return KindInternal
}

// IsRecoverable reports whether err is a per-unit failure that should not
// abort a batch.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindProvider, KindTimeout, KindExtractionParse:
		return true
	default:
		return false
	}
}
