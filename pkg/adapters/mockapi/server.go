// Package mockapi serves an in-memory user collection over HTTP for local
// development, speaking the same contract as the remote collection.
package mockapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aretw0/roster/internal/logging"
	"github.com/aretw0/roster/pkg/adapters/memory"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

// Server exposes a memory.Resource as GET/POST /data and GET/PATCH/DELETE /data/{id}.
type Server struct {
	resource *memory.Resource
	logger   *slog.Logger
	latency  time.Duration
	failures atomic.Int64 // remaining injected list failures
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLatency delays every response, to make pending states visible.
func WithLatency(d time.Duration) Option {
	return func(s *Server) {
		s.latency = d
	}
}

// WithListFailures answers the next n list requests with 503, to exercise
// client retries.
func WithListFailures(n int) Option {
	return func(s *Server) {
		s.failures.Store(int64(n))
	}
}

// NewServer creates a server over resource.
func NewServer(resource *memory.Resource, opts ...Option) *Server {
	s := &Server{
		resource: resource,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.delay)

	r.Route("/data", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Patch("/{id}", s.update)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.delete)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			select {
			case <-time.After(s.latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type userBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if s.failures.Load() > 0 && s.failures.Add(-1) >= 0 {
		s.logger.Info("injected list failure", "request_id", middleware.GetReqID(r.Context()))
		http.Error(w, "injected failure", http.StatusServiceUnavailable)
		return
	}

	users, err := s.resource.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	user, found := s.resource.Get(id)
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body userBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	data := domain.UserFormData{}
	if body.Name != nil {
		data.Name = *body.Name
	}
	if body.Email != nil {
		data.Email = *body.Email
	}

	created, err := s.resource.Create(r.Context(), data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("user created", "id", created.ID, "request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body userBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	current, found := s.resource.Get(id)
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	// Partial update keeps absent fields
	data := domain.UserFormData{Name: current.Name, Email: current.Email}
	if body.Name != nil {
		data.Name = *body.Name
	}
	if body.Email != nil {
		data.Email = *body.Email
	}

	if err := s.resource.Update(r.Context(), id, data); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, _ := s.resource.Get(id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.resource.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var reqErr *domain.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		status = reqErr.StatusCode
	}
	s.logger.Warn("mock request failed", "path", r.URL.Path, "status", status, "err", err)
	http.Error(w, http.StatusText(status), status)
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
