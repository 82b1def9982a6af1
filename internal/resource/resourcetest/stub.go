// Package resourcetest provides an in-process Transport stub for client tests.
package resourcetest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/wolfman30/medcare-portal/internal/transport"
)

// Call is one request seen by the stub.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// Reply is what the stub answers for a route. Err takes precedence; a Status
// outside 2xx produces a *transport.StatusError.
type Reply struct {
	Status int
	Body   string
	Err    error
}

// Stub answers requests from a route table keyed by method and path.
// Unknown routes answer 404 like the backend does.
type Stub struct {
	mu     sync.Mutex
	routes map[string]Reply
	calls  []Call
}

func New() *Stub {
	return &Stub{routes: make(map[string]Reply)}
}

// On registers a reply for method and path.
func (s *Stub) On(method, path string, r Reply) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = r
	return s
}

// JSON registers a 200 reply with the given body.
func (s *Stub) JSON(method, path, body string) *Stub {
	return s.On(method, path, Reply{Status: http.StatusOK, Body: body})
}

// Fail registers a non-2xx reply.
func (s *Stub) Fail(method, path string, status int) *Stub {
	return s.On(method, path, Reply{Status: status, Body: `{"msg":"` + http.StatusText(status) + `"}`})
}

// Error registers a transport-level failure with no HTTP status.
func (s *Stub) Error(method, path string, err error) *Stub {
	return s.On(method, path, Reply{Err: err})
}

func (s *Stub) Do(_ context.Context, req transport.Request) ([]byte, error) {
	var body []byte
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		body = b
	default:
		body, _ = json.Marshal(b)
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: req.Method, Path: req.Path, Query: req.Query, Body: body})
	r, ok := s.routes[req.Method+" "+req.Path]
	s.mu.Unlock()

	if !ok {
		return nil, &transport.StatusError{StatusCode: http.StatusNotFound, Method: req.Method, Path: req.Path, Message: "no route"}
	}
	if r.Err != nil {
		return nil, r.Err
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status < 200 || status > 299 {
		return nil, &transport.StatusError{StatusCode: status, Method: req.Method, Path: req.Path, Body: []byte(r.Body)}
	}
	return []byte(r.Body), nil
}

// Calls returns a copy of every recorded request.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// LastCall returns the most recent request, or a zero Call.
func (s *Stub) LastCall() Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return Call{}
	}
	return s.calls[len(s.calls)-1]
}

// Options decodes the JSON "options" query parameter of a call.
func (c Call) Options() map[string]any {
	raw := c.Query.Get("options")
	if raw == "" {
		return nil
	}
	var out map[string]any
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
