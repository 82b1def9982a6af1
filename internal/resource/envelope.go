package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoData is returned when a single-record response carries a null or
// missing data field.
var ErrNoData = errors.New("resource: response carried no data")

// Envelope wraps every single-resource response.
type Envelope[T any] struct {
	Code int    `json:"code"`
	Data T      `json:"data"`
	Msg  string `json:"msg"`
}

// PaginationInfo describes one page of a list. TotalPages is computed by the
// backend and passed through unchecked.
type PaginationInfo struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether another page follows this one.
func (p PaginationInfo) HasNext() bool {
	return p.Page < p.TotalPages
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
	Message    string         `json:"message,omitempty"`
	Success    *bool          `json:"success,omitempty"`
}

// ListShape identifies which list envelope a response used.
type ListShape int

const (
	// ShapePaginated is {data: [], pagination: {...}}.
	ShapePaginated ListShape = iota
	// ShapePlain is the single-op envelope {code, data: [], msg}. Older /many
	// endpoints still answer with it; it is accepted for compatibility only.
	ShapePlain
	// ShapeBare is a top-level JSON array with no envelope, as some bulk
	// endpoints return.
	ShapeBare
)

func (s ListShape) String() string {
	switch s {
	case ShapePaginated:
		return "paginated"
	case ShapePlain:
		return "plain"
	case ShapeBare:
		return "bare"
	default:
		return fmt.Sprintf("ListShape(%d)", int(s))
	}
}

// DetectListShape inspects a list response body. The presence of a top-level
// "pagination" key selects ShapePaginated.
func DetectListShape(body []byte) (ListShape, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return 0, errors.New("resource: empty list response")
	}
	if trimmed[0] == '[' {
		return ShapeBare, nil
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return 0, fmt.Errorf("resource: decode list response: %w", err)
	}
	if _, ok := keys["pagination"]; ok {
		return ShapePaginated, nil
	}
	return ShapePlain, nil
}

// DecodeList extracts the record array from any of the list shapes.
func DecodeList[T any](body []byte) ([]T, ListShape, error) {
	page, shape, err := decodePage[T](body)
	if err != nil {
		return nil, shape, err
	}
	return page.Data, shape, nil
}

// decodePage decodes a list response into a Page. Plain and bare responses
// get a synthetic single-page pagination covering the whole array.
func decodePage[T any](body []byte) (*Page[T], ListShape, error) {
	shape, err := DetectListShape(body)
	if err != nil {
		return nil, shape, err
	}
	switch shape {
	case ShapePaginated:
		var page Page[T]
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, shape, fmt.Errorf("resource: decode paginated response: %w", err)
		}
		return &page, shape, nil
	case ShapeBare:
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, shape, fmt.Errorf("resource: decode array response: %w", err)
		}
		return singlePage(items), shape, nil
	default:
		var env Envelope[[]T]
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, shape, fmt.Errorf("resource: decode list envelope: %w", err)
		}
		page := singlePage(env.Data)
		page.Message = env.Msg
		return page, shape, nil
	}
}

func singlePage[T any](items []T) *Page[T] {
	p := &Page[T]{Data: items, Pagination: PaginationInfo{Total: len(items), Page: 1, Limit: len(items)}}
	if len(items) > 0 {
		p.Pagination.TotalPages = 1
	} else {
		p.Pagination.Limit = 1
	}
	return p
}

// decodeData unwraps the data field of a single-op envelope. An empty body
// yields the zero value.
func decodeData[R any](body []byte) (R, error) {
	var env Envelope[R]
	if len(bytes.TrimSpace(body)) == 0 {
		return env.Data, nil
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env.Data, fmt.Errorf("resource: decode envelope: %w", err)
	}
	return env.Data, nil
}

func decodeRecord[T any](body []byte) (*T, error) {
	rec, err := decodeData[*T](body)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoData
	}
	return rec, nil
}
