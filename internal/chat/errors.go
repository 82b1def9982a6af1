package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/wolfman30/medcare-portal/internal/transport"
)

// Kind is the closed set of user-facing chat failures.
type Kind string

const (
	KindBadRequest       Kind = "BAD_REQUEST"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindForbidden        Kind = "FORBIDDEN"
	KindEndpointNotFound Kind = "ENDPOINT_NOT_FOUND"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindServerError      Kind = "SERVER_ERROR"
	KindNetworkError     Kind = "NETWORK_ERROR"
	KindUnknown          Kind = "UNKNOWN_ERROR"
)

var defaultMessages = map[Kind]string{
	KindBadRequest:       "the message could not be processed",
	KindUnauthorized:     "please sign in again",
	KindForbidden:        "you do not have access to this conversation",
	KindEndpointNotFound: "chat service is not available",
	KindRateLimited:      "too many messages, try again shortly",
	KindServerError:      "chat service error, try again",
	KindNetworkError:     "network error, check your connection",
	KindUnknown:          "unexpected chat error",
}

// Error is a classified chat failure. Err keeps the underlying cause.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("chat: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("chat: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, status int, message string, cause error) *Error {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &Error{
		Kind:      kind,
		Status:    status,
		Message:   message,
		Retryable: kind == KindRateLimited || kind == KindServerError || kind == KindNetworkError,
		Err:       cause,
	}
}

// KindForStatus maps an HTTP status to a Kind. Zero means no response.
func KindForStatus(status int) Kind {
	switch {
	case status == 0:
		return KindNetworkError
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindEndpointNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500 && status <= 599:
		return KindServerError
	default:
		return KindUnknown
	}
}

// Classify converts any error returned by a chat call into an *Error.
// Already classified errors are returned as is; nil stays nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	var se *transport.StatusError
	if errors.As(err, &se) {
		return newError(KindForStatus(se.StatusCode), se.StatusCode, se.Message, err)
	}
	if errors.Is(err, transport.ErrTokenExpired) {
		return newError(KindUnauthorized, 0, "", err)
	}
	if isNetworkError(err) {
		return newError(KindNetworkError, 0, "", err)
	}
	return newError(KindUnknown, 0, "", err)
}

// IsRetryable reports whether the caller may retry the failed call.
func IsRetryable(err error) bool {
	ce := Classify(err)
	return ce != nil && ce.Retryable
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
