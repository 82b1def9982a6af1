// Package chat is the messaging client. The backend has exposed chat under
// more than one base path, so every call walks a list of candidate endpoints
// and remembers the one that answered.
package chat

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/medcare-portal/internal/resource"
	"github.com/wolfman30/medcare-portal/internal/transport"
	"github.com/wolfman30/medcare-portal/pkg/logging"
)

// DefaultEndpoints are tried in order when none are configured.
var DefaultEndpoints = []string{"/api/v1/chat", "/api/v1/chats", "/api/v1/messages"}

// Outcome labels reported per endpoint attempt.
const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// EndpointRecorder receives one observation per endpoint attempt.
type EndpointRecorder interface {
	ObserveEndpointAttempt(endpoint, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveEndpointAttempt(string, string) {}

type Participant struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"`
}

type Message struct {
	ID             string                    `json:"_id,omitempty"`
	ConversationID string                    `json:"conversationId,omitempty"`
	Sender         resource.Ref[Participant] `json:"sender"`
	Receiver       resource.Ref[Participant] `json:"receiver"`
	Content        string                    `json:"content"`
	Attachments    []string                  `json:"attachments,omitempty"`
	IsRead         bool                      `json:"isRead"`
	CreatedAt      *time.Time                `json:"createdAt,omitempty"`
}

type Conversation struct {
	ID           string                      `json:"_id"`
	Participants []resource.Ref[Participant] `json:"participants"`
	LastMessage  *Message                    `json:"lastMessage,omitempty"`
	UnreadCount  int                         `json:"unreadCount"`
	UpdatedAt    *time.Time                  `json:"updatedAt,omitempty"`
}

// SendMessageRequest starts or continues a conversation. ConversationID may
// be empty for a first message to ReceiverID.
type SendMessageRequest struct {
	ConversationID string   `json:"conversationId,omitempty"`
	ReceiverID     string   `json:"receiverId,omitempty"`
	Content        string   `json:"content"`
	Attachments    []string `json:"attachments,omitempty"`
}

// Config wires a chat Client.
type Config struct {
	Endpoints []string
	PinStore  PinStore
	Logger    *logging.Logger
	Metrics   EndpointRecorder
}

// Client sends and reads chat messages through whichever candidate
// endpoint the backend serves.
type Client struct {
	transport resource.Transport
	endpoints []string
	pins      PinStore
	logger    *logging.Logger
	metrics   EndpointRecorder
}

func NewClient(t resource.Transport, cfg Config) *Client {
	endpoints := normalizeEndpoints(cfg.Endpoints)
	if len(endpoints) == 0 {
		endpoints = normalizeEndpoints(DefaultEndpoints)
	}
	pins := cfg.PinStore
	if pins == nil {
		pins = NewMemoryPinStore()
	}
	var recorder EndpointRecorder = noopRecorder{}
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}
	return &Client{
		transport: t,
		endpoints: endpoints,
		pins:      pins,
		logger:    cfg.Logger.Component("chat"),
		metrics:   recorder,
	}
}

// Endpoints returns the candidates in configured order.
func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

// ActiveEndpoint returns the endpoint the next call tries first.
func (c *Client) ActiveEndpoint(ctx context.Context) string {
	return c.order(c.pinned(ctx))[0]
}

// SendMessage posts a message and returns the stored copy.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	if strings.TrimSpace(req.Content) == "" && len(req.Attachments) == 0 {
		return nil, newError(KindBadRequest, 0, "message content is required", nil)
	}
	return fallback(ctx, c, "send_message", func(ctx context.Context, endpoint string) (*Message, error) {
		rc := resource.New[Message](c.transport, endpoint)
		return resource.FullResponse[*Message](ctx, rc, http.MethodPost, rc.BasePath(), nil, req)
	})
}

// ListConversations pages through the caller's conversations.
func (c *Client) ListConversations(ctx context.Context, params url.Values) (*resource.Page[Conversation], error) {
	return fallback(ctx, c, "list_conversations", func(ctx context.Context, endpoint string) (*resource.Page[Conversation], error) {
		rc := resource.New[Conversation](c.transport, endpoint)
		return rc.PageAt(ctx, rc.Path("conversations"), params)
	})
}

// GetMessages pages through one conversation's messages.
func (c *Client) GetMessages(ctx context.Context, conversationID string, params url.Values) (*resource.Page[Message], error) {
	return fallback(ctx, c, "get_messages", func(ctx context.Context, endpoint string) (*resource.Page[Message], error) {
		rc := resource.New[Message](c.transport, endpoint)
		return rc.PageAt(ctx, rc.Path("conversations", conversationID, "messages"), params)
	})
}

// fallback tries each candidate until one answers. A 404 moves on to the next
// candidate; any other failure stops the walk. The endpoint that answered is
// pinned for later calls.
func fallback[R any](ctx context.Context, c *Client, op string, call func(ctx context.Context, endpoint string) (R, error)) (R, error) {
	var zero R
	pinned := c.pinned(ctx)
	for _, endpoint := range c.order(pinned) {
		out, err := call(ctx, endpoint)
		if err == nil {
			c.metrics.ObserveEndpointAttempt(endpoint, outcomeSuccess)
			if endpoint != pinned {
				c.pin(ctx, endpoint)
			}
			return out, nil
		}
		if transport.StatusCode(err) == http.StatusNotFound {
			c.metrics.ObserveEndpointAttempt(endpoint, outcomeNotFound)
			c.logger.Info("chat endpoint not found, trying next", "op", op, "endpoint", endpoint)
			continue
		}
		c.metrics.ObserveEndpointAttempt(endpoint, outcomeError)
		classified := Classify(err)
		c.logger.Warn("chat request failed",
			"op", op,
			"endpoint", endpoint,
			"kind", classified.Kind,
			"retryable", classified.Retryable,
			"error", err,
		)
		return zero, classified
	}
	c.logger.Warn("no chat endpoint available", "op", op, "candidates", c.endpoints)
	return zero, newError(KindEndpointNotFound, http.StatusNotFound, "", nil)
}

func (c *Client) pinned(ctx context.Context) string {
	endpoint, err := c.pins.Pinned(ctx)
	if err != nil {
		c.logger.Warn("failed to read pinned chat endpoint", "error", err)
		return ""
	}
	return endpoint
}

func (c *Client) pin(ctx context.Context, endpoint string) {
	if err := c.pins.Pin(ctx, endpoint); err != nil {
		c.logger.Warn("failed to pin chat endpoint", "endpoint", endpoint, "error", err)
		return
	}
	c.logger.Info("chat endpoint pinned", "endpoint", endpoint)
}

// order puts a known pinned endpoint first and keeps the rest in configured
// order. Pins naming an unknown endpoint are ignored.
func (c *Client) order(pinned string) []string {
	if pinned == "" || pinned == c.endpoints[0] {
		return c.endpoints
	}
	out := make([]string, 0, len(c.endpoints))
	found := false
	for _, e := range c.endpoints {
		if e == pinned {
			found = true
			continue
		}
		out = append(out, e)
	}
	if !found {
		return c.endpoints
	}
	return append([]string{pinned}, out...)
}

func normalizeEndpoints(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		e = strings.Trim(strings.TrimSpace(e), "/")
		if e == "" {
			continue
		}
		e = "/" + e
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
