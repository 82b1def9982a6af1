package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxErrorMessage = 300

// StatusError is returned for every non-2xx backend response.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transport: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport: %s %s returned %d", e.Method, e.Path, e.StatusCode)
}

// StatusCode extracts the HTTP status carried by err, or 0 when err did not
// come from a backend response (network failure, cancellation, decode error).
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func newStatusError(status int, method, path string, body []byte) *StatusError {
	se := &StatusError{StatusCode: status, Method: method, Path: path, Body: body}
	var parsed struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Msg != "":
			se.Message = parsed.Msg
		case parsed.Message != "":
			se.Message = parsed.Message
		case parsed.Error != "":
			se.Message = parsed.Error
		}
		return se
	}
	se.Message = truncate(strings.TrimSpace(string(body)), maxErrorMessage)
	return se
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
