package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned before a request is sent when the configured
// bearer token is already past its exp claim.
var ErrTokenExpired = errors.New("transport: bearer token expired")

// TokenSource supplies the bearer token attached to each request. An empty
// token sends the request without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is an opaque token sent as-is.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// JWTToken is a session token issued by the backend. The signature is not
// verified here (the backend owns the key); only the expiry is inspected.
type JWTToken struct {
	raw       string
	expiresAt time.Time
	subject   string
	now       func() time.Time
}

// ParseJWTToken reads the claims of a backend-issued token.
func ParseJWTToken(raw string) (*JWTToken, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("transport: empty token")
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("transport: parse token: %w", err)
	}
	tok := &JWTToken{raw: raw, subject: claims.Subject, now: time.Now}
	if claims.ExpiresAt != nil {
		tok.expiresAt = claims.ExpiresAt.Time
	}
	return tok, nil
}

// Subject is the user id the token was issued to.
func (t *JWTToken) Subject() string { return t.subject }

// ExpiresAt is zero when the token carries no exp claim.
func (t *JWTToken) ExpiresAt() time.Time { return t.expiresAt }

func (t *JWTToken) Token(context.Context) (string, error) {
	if !t.expiresAt.IsZero() && !t.now().Before(t.expiresAt) {
		return "", ErrTokenExpired
	}
	return t.raw, nil
}

// TokenFromString picks JWTToken for well-formed JWTs and StaticToken otherwise.
func TokenFromString(raw string) TokenSource {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ".") == 2 {
		if tok, err := ParseJWTToken(raw); err == nil {
			return tok
		}
	}
	return StaticToken(raw)
}
