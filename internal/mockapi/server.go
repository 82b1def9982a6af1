// Package mockapi is an in-memory stand-in for the portal backend. It serves
// the same envelopes and sub-routes the API clients expect, which makes it
// usable for local development and end-to-end tests.
package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/medcare-portal/internal/http/middleware"
	"github.com/wolfman30/medcare-portal/pkg/logging"
)

const maxBodyBytes = 1 << 20

// CollectionSpec declares one REST collection.
type CollectionSpec struct {
	// Path is the base path, e.g. /api/v1/doctor.
	Path string
	// LegacyMany makes GET {Path}/many answer with the plain list envelope
	// older backend builds used instead of the paginated one.
	LegacyMany bool
	// ToggleField is flipped by PATCH {Path}/{id}/toggle. Defaults to isActive.
	ToggleField string
	// Refs maps a field to the collection path its ids point into, for
	// populateOptions and /details.
	Refs map[string]string
	// Lookups adds GET {Path}/{segment}/{id} routes listing records whose
	// field equals id, e.g. {"specialization": "specialization"}.
	Lookups map[string]string
	// Unique adds GET {Path}/{segment}/{value} routes returning the single
	// record whose field equals value, e.g. {"slug": "slug"}.
	Unique map[string]string
	Seed   []Record
}

// Config wires a Server.
type Config struct {
	Logger      *logging.Logger
	Collections []CollectionSpec
	// ChatPath, when set, serves the chat routes under that base path only.
	ChatPath    string
	RateLimit   float64
	RateBurst   int
	CORSOrigins []string
	JWTSecret   string
	Now         func() time.Time
}

// Server is the mock backend.
type Server struct {
	logger      *logging.Logger
	specs       map[string]CollectionSpec
	collections map[string]*Collection
	chat        *chatStore
	router      chi.Router
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		logger:      logger.Component("mockapi"),
		specs:       make(map[string]CollectionSpec, len(cfg.Collections)),
		collections: make(map[string]*Collection, len(cfg.Collections)),
	}
	for _, spec := range cfg.Collections {
		spec.Path = "/" + strings.Trim(spec.Path, "/")
		if spec.ToggleField == "" {
			spec.ToggleField = "isActive"
		}
		col := newCollection(now)
		for _, rec := range spec.Seed {
			col.Insert(rec)
		}
		s.specs[spec.Path] = spec
		s.collections[spec.Path] = col
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(s.logger))
	if cfg.RateLimit > 0 {
		r.Use(httpmiddleware.RateLimit(httpmiddleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"status": "ok"}, "ok")
	})

	r.Group(func(api chi.Router) {
		if cfg.JWTSecret != "" {
			api.Use(httpmiddleware.BearerJWT(cfg.JWTSecret))
		}
		for path := range s.collections {
			api.Route(path, s.collectionRoutes(path))
		}
		if cfg.ChatPath != "" {
			s.chat = newChatStore(now)
			api.Route("/"+strings.Trim(cfg.ChatPath, "/"), s.chatRoutes)
		}
	})
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Collection exposes a collection for seeding and assertions.
func (s *Server) Collection(path string) *Collection {
	return s.collections["/"+strings.Trim(path, "/")]
}

func (s *Server) collectionRoutes(path string) func(chi.Router) {
	spec := s.specs[path]
	col := s.collections[path]
	h := &collectionHandler{server: s, spec: spec, col: col}
	return func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/many", h.many)
		r.Patch("/many", h.updateMany)
		r.Post("/createMany", h.createMany)
		r.Get("/active", h.active)
		r.Delete("/bulk", h.deleteBulk)
		for field, segment := range spec.Lookups {
			r.Get("/"+segment+"/{ref}", h.lookup(field))
		}
		for field, segment := range spec.Unique {
			r.Get("/"+segment+"/{ref}", h.findOne(field))
		}
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
		r.Patch("/{id}/toggle", h.toggle)
		r.Patch("/{id}/status", h.setStatus)
		r.Put("/{id}/status", h.setStatus)
		r.Patch("/{id}/cancel", h.cancel)
		r.Get("/{id}/details", h.details)
	}
}

// populate expands spec.Refs fields named in paths (space separated).
func (s *Server) populate(spec CollectionSpec, recs []Record, paths, sel string) []Record {
	fields := strings.Fields(paths)
	if len(fields) == 0 {
		return recs
	}
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.expand(spec, rec, fields, sel))
	}
	return out
}

func (s *Server) expand(spec CollectionSpec, rec Record, fields []string, sel string) Record {
	expanded := make(Record, len(rec))
	for k, v := range rec {
		expanded[k] = v
	}
	for _, field := range fields {
		target, ok := spec.Refs[field]
		if !ok {
			continue
		}
		id, ok := rec[field].(string)
		if !ok {
			continue
		}
		col := s.collections[target]
		if col == nil {
			continue
		}
		if ref, found := col.Get(id); found {
			expanded[field] = selectFields(ref, sel)
		}
	}
	return expanded
}

func (s *Server) refFields(spec CollectionSpec) []string {
	fields := make([]string, 0, len(spec.Refs))
	for f := range spec.Refs {
		fields = append(fields, f)
	}
	return fields
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeEnvelope(w http.ResponseWriter, status int, data any, msg string) {
	writeJSON(w, status, map[string]any{"code": status, "data": data, "msg": msg})
}

func writePage(w http.ResponseWriter, data []Record, info pageInfo) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       data,
		"pagination": info,
		"success":    true,
		"message":    "ok",
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"code": status, "data": nil, "msg": msg})
}
