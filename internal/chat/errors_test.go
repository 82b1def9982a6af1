package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/medcare-portal/internal/transport"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      Kind
		retryable bool
	}{
		{"bad request", &transport.StatusError{StatusCode: http.StatusBadRequest}, KindBadRequest, false},
		{"unauthorized", &transport.StatusError{StatusCode: http.StatusUnauthorized}, KindUnauthorized, false},
		{"forbidden", &transport.StatusError{StatusCode: http.StatusForbidden}, KindForbidden, false},
		{"not found", &transport.StatusError{StatusCode: http.StatusNotFound}, KindEndpointNotFound, false},
		{"rate limited", &transport.StatusError{StatusCode: http.StatusTooManyRequests}, KindRateLimited, true},
		{"server error", &transport.StatusError{StatusCode: http.StatusBadGateway}, KindServerError, true},
		{"conflict", &transport.StatusError{StatusCode: http.StatusConflict}, KindUnknown, false},
		{"network", fmt.Errorf("transport: POST /a: %w", &url.Error{Op: "Post", URL: "http://x/a", Err: errors.New("connection refused")}), KindNetworkError, true},
		{"timeout", context.DeadlineExceeded, KindNetworkError, true},
		{"expired token", transport.ErrTokenExpired, KindUnauthorized, false},
		{"decode", errors.New("resource: decode envelope: unexpected EOF"), KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := Classify(tt.err)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.retryable, ce.Retryable)
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.ErrorIs(t, ce, tt.err)
			assert.NotEmpty(t, ce.Message)
		})
	}
}

func TestClassify_KeepsServerMessageAndIsIdempotent(t *testing.T) {
	ce := Classify(&transport.StatusError{StatusCode: http.StatusBadRequest, Message: "content too long"})
	assert.Equal(t, "content too long", ce.Message)
	assert.Equal(t, "chat: BAD_REQUEST (400): content too long", ce.Error())
	assert.Same(t, ce, Classify(ce))
	assert.Same(t, ce, Classify(fmt.Errorf("wrapped: %w", ce)))
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.False(t, IsRetryable(nil))
}
