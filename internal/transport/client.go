// Package transport issues authenticated JSON requests against the portal backend.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medcare-portal/pkg/logging"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultBackoff   = 250 * time.Millisecond
	defaultUserAgent = "medcare-portal/0.1"
	apiPrefix        = "/api/v1/"
)

var tracer = otel.Tracer("medcare.internal.transport")

// Recorder receives one observation per finished request.
type Recorder interface {
	ObserveRequest(method, resource string, status int, seconds float64)
}

// Config controls how the transport behaves.
type Config struct {
	BaseURL    string
	Token      TokenSource
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	UserAgent  string
	Metrics    Recorder
}

// Request describes one backend call. Path is relative to the base URL.
// Body is JSON encoded unless it is already []byte or json.RawMessage.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Client is the configured HTTP transport shared by every resource client.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	userAgent  string
	metrics    Recorder
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("transport: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("transport: invalid base URL: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	token := cfg.Token
	if token == nil {
		token = StaticToken("")
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
		userAgent:  userAgent,
		metrics:    cfg.Metrics,
	}, nil
}

// Do sends req and returns the raw response body of a 2xx response. Non-2xx
// responses become *StatusError.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}
	token, err := c.token.Token(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "transport.request", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", req.Path),
	)

	data, status, err := c.invoke(ctx, method, req.Path, req.Query, body, token)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return data, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, query url.Values, body []byte, token string) ([]byte, int, error) {
	fullURL := c.buildURL(path, query)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return nil, 0, fmt.Errorf("transport: build request: %w", err)
		}
		requestID := uuid.NewString()
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("User-Agent", c.userAgent)
		httpReq.Header.Set("X-Request-ID", requestID)
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
		if body != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			c.observe(method, path, 0, start)
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			if !shouldRetry(0, err) || attempt == c.maxRetries {
				c.logger.Warn("backend request failed", "method", method, "path", path, "request_id", requestID, "error", err)
				return nil, 0, fmt.Errorf("transport: %s %s: %w", method, path, err)
			}
			lastErr = err
			c.logRetry(path, attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, 0, sleepErr
			}
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.observe(method, path, resp.StatusCode, start)
		if readErr != nil {
			return nil, resp.StatusCode, fmt.Errorf("transport: read response: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.logger.Debug("backend request completed",
				"method", method,
				"path", path,
				"status", resp.StatusCode,
				"request_id", requestID,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return data, resp.StatusCode, nil
		}
		statusErr := newStatusError(resp.StatusCode, method, path, data)
		if attempt < c.maxRetries && shouldRetry(resp.StatusCode, nil) {
			lastErr = statusErr
			c.logRetry(path, attempt, resp.StatusCode, statusErr)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, resp.StatusCode, sleepErr
			}
			continue
		}
		c.logger.Debug("backend non-2xx response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return nil, resp.StatusCode, statusErr
	}
	if lastErr != nil {
		return nil, 0, lastErr
	}
	return nil, 0, errors.New("transport: request failed without response")
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full = full + "?" + query.Encode()
	}
	return full
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(method, ResourceLabel(path), status, time.Since(start).Seconds())
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(path string, attempt int, status int, err error) {
	c.logger.Warn("backend retry",
		"path", path,
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

// ResourceLabel reduces a request path to its resource name for metrics,
// e.g. "/api/v1/doctor/abc/toggle" becomes "doctor".
func ResourceLabel(path string) string {
	p := "/" + strings.TrimLeft(path, "/")
	p = strings.TrimPrefix(p, apiPrefix)
	p = strings.TrimLeft(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal request: %w", err)
	}
	return payload, nil
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		return !errors.Is(err, context.Canceled)
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status <= 599
}
