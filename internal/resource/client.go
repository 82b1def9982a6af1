// Package resource provides the generic CRUD client every portal resource
// client is built on. It marshals requests, unwraps the backend envelopes and
// returns transport errors unchanged.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wolfman30/medcare-portal/internal/transport"
)

// Transport issues one backend request and returns the raw 2xx body.
type Transport interface {
	Do(ctx context.Context, req transport.Request) ([]byte, error)
}

// Client is a typed CRUD client bound to one base path such as /api/v1/doctor.
type Client[T any] struct {
	transport Transport
	basePath  string
}

// New binds a client to basePath.
func New[T any](t Transport, basePath string) *Client[T] {
	return &Client[T]{
		transport: t,
		basePath:  "/" + strings.Trim(strings.TrimSpace(basePath), "/"),
	}
}

// BasePath returns the collection path the client is bound to.
func (c *Client[T]) BasePath() string {
	return c.basePath
}

// Path joins escaped segments onto the base path.
func (c *Client[T]) Path(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.basePath)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// GetAll lists the collection at the base path.
func (c *Client[T]) GetAll(ctx context.Context, params url.Values) ([]T, error) {
	return c.ListAt(ctx, c.basePath, params)
}

// GetPaginated returns the whole paginated envelope of {base}/many. Callers
// supply page and limit; nothing is defaulted here.
func (c *Client[T]) GetPaginated(ctx context.Context, params url.Values) (*Page[T], error) {
	return c.PageAt(ctx, c.Path("many"), params)
}

// GetMany returns only the records of {base}/many, whichever list envelope
// the backend answered with.
func (c *Client[T]) GetMany(ctx context.Context, params url.Values) ([]T, error) {
	return c.ListAt(ctx, c.Path("many"), params)
}

// GetByID fetches one record. A missing record surfaces as the transport's
// 404 error.
func (c *Client[T]) GetByID(ctx context.Context, id string) (*T, error) {
	body, err := c.send(ctx, http.MethodGet, c.Path(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord[T](body)
}

// Create posts a (partial) record and returns the created one.
func (c *Client[T]) Create(ctx context.Context, data any) (*T, error) {
	body, err := c.send(ctx, http.MethodPost, c.basePath, nil, data)
	if err != nil {
		return nil, err
	}
	return decodeRecord[T](body)
}

// CreateMany posts several records at once.
func (c *Client[T]) CreateMany(ctx context.Context, data []any) ([]T, error) {
	body, err := c.send(ctx, http.MethodPost, c.Path("createMany"), nil, data)
	if err != nil {
		return nil, err
	}
	items, _, err := DecodeList[T](body)
	return items, err
}

// Update replaces fields of one record.
func (c *Client[T]) Update(ctx context.Context, id string, data any) (*T, error) {
	body, err := c.send(ctx, http.MethodPut, c.Path(id), nil, data)
	if err != nil {
		return nil, err
	}
	return decodeRecord[T](body)
}

// UpdateManyRequest applies the same partial data to every listed id.
type UpdateManyRequest struct {
	IDs  []string `json:"ids"`
	Data any      `json:"data"`
}

// UpdateMany patches {base}/many.
func (c *Client[T]) UpdateMany(ctx context.Context, ids []string, data any) ([]T, error) {
	body, err := c.send(ctx, http.MethodPatch, c.Path("many"), nil, UpdateManyRequest{IDs: ids, Data: data})
	if err != nil {
		return nil, err
	}
	items, _, err := DecodeList[T](body)
	return items, err
}

// Delete removes one record and returns the opaque data the backend sent back.
func (c *Client[T]) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	body, err := c.send(ctx, http.MethodDelete, c.Path(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[json.RawMessage](body)
}

// ListAt issues a GET against any endpoint returning a list envelope.
func (c *Client[T]) ListAt(ctx context.Context, endpoint string, params url.Values) ([]T, error) {
	body, err := c.send(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return nil, err
	}
	items, _, err := DecodeList[T](body)
	return items, err
}

// PageAt issues a GET against any endpoint returning a paginated envelope.
func (c *Client[T]) PageAt(ctx context.Context, endpoint string, params url.Values) (*Page[T], error) {
	body, err := c.send(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return nil, err
	}
	page, _, err := decodePage[T](body)
	return page, err
}

func (c *Client[T]) send(ctx context.Context, method, endpoint string, params url.Values, body any) ([]byte, error) {
	if c.transport == nil {
		return nil, errors.New("resource: client has no transport")
	}
	return c.transport.Do(ctx, transport.Request{
		Method: method,
		Path:   endpoint,
		Query:  params,
		Body:   body,
	})
}

// FullResponse lets a resource-specific client call an endpoint outside the
// CRUD verbs (e.g. {base}/{id}/toggle) and still get the envelope's data
// decoded into R.
func FullResponse[R any, T any](ctx context.Context, c *Client[T], method, endpoint string, params url.Values, body any) (R, error) {
	var zero R
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return zero, fmt.Errorf("resource: unsupported method %q", method)
	}
	raw, err := c.send(ctx, method, endpoint, params, body)
	if err != nil {
		return zero, err
	}
	return decodeData[R](raw)
}
