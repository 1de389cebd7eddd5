// Package http exposes the roster state over a small JSON API, with state
// diffs streamed to clients over Server-Sent Events.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/roster"
	"github.com/aretw0/roster/internal/logging"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/aretw0/roster/pkg/ports"
	"github.com/aretw0/roster/pkg/sanitize"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines the interface for the roster core.
type Engine interface {
	State() *domain.State
	Users(order domain.SortOrder) ([]domain.User, error)
	Dispatch(ctx context.Context, action domain.Action) (*domain.State, error)
	FetchUsers(ctx context.Context) error
	SubmitAddUser(ctx context.Context) error
	SubmitEditUser(ctx context.Context, id int) error
	SubmitDeleteUser(ctx context.Context, id int) error
	Subscribe(fn func(domain.Change)) func()
	Journal(ctx context.Context, limit int) ([]ports.JournalEntry, error)
}

// Server serves the view API for one engine.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	unsubscribe func()
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

// WithMetrics serves the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// ActionRequest is the body of POST /actions.
type ActionRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer. State is included when
// a workflow failed, since failures still move the state.
type ErrorResponse struct {
	Error string        `json:"error"`
	State *domain.State `json:"state,omitempty"`
}

var watchParts = map[string]bool{"list": true, "status": true, "forms": true, "error": true}

// NewServer creates a server and starts forwarding engine diffs to SSE clients.
// Call Close to stop forwarding.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	s.unsubscribe = engine.Subscribe(s.forward)
	return s
}

// Close detaches the server from the engine.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// forward runs on the dispatching goroutine; Broadcast never blocks.
func (s *Server) forward(c domain.Change) {
	diff := domain.Diff(c.Prev, c.Next)
	if diff == nil {
		return
	}
	diff.Action = c.Action.Type

	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("failed to encode diff", "seq", c.Seq, "err", err)
		return
	}
	s.Streams.Broadcast(StreamEvent{Seq: c.Seq, Diff: diff, Data: data})
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	r.Get("/state", s.GetState)
	r.Get("/users", s.ListUsers)
	r.Get("/journal", s.GetJournal)
	r.Get("/events", s.SubscribeEvents)
	r.Post("/actions", s.DispatchAction)

	r.Route("/workflows", func(r chi.Router) {
		r.Post("/fetch-users", s.workflow(func(ctx context.Context, _ int) error {
			return s.Engine.FetchUsers(ctx)
		}, false))
		r.Post("/submit-add-user", s.workflow(func(ctx context.Context, _ int) error {
			return s.Engine.SubmitAddUser(ctx)
		}, false))
		r.Post("/submit-edit-user/{id}", s.workflow(s.Engine.SubmitEditUser, true))
		r.Post("/submit-delete-user/{id}", s.workflow(s.Engine.SubmitDeleteUser, true))
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Roster API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	} else if err != nil {
		s.logger.Error("failed to load openapi document", "err", err)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "roster-http",
		"version":     strings.TrimSpace(roster.Version),
		"api_version": apiVersion,
	})
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.State())
}

// ListUsers handles the GET /users request.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	var param *string
	if err := runtime.BindQueryParameter("form", true, false, "order", r.URL.Query(), &param); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter order: %w", err), nil)
		return
	}
	order := domain.SortNone
	if param != nil {
		var err error
		if order, err = domain.ParseSortOrder(*param); err != nil {
			s.writeError(w, http.StatusBadRequest, err, nil)
			return
		}
	}

	users, err := s.Engine.Users(order)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

// GetJournal handles the GET /journal request.
func (s *Server) GetJournal(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter limit: %w", err), nil)
		return
	}
	n := 0
	if limit != nil {
		if *limit < 0 {
			s.writeError(w, http.StatusBadRequest, errors.New("limit must not be negative"), nil)
			return
		}
		n = *limit
	}

	entries, err := s.Engine.Journal(r.Context(), n)
	switch {
	case errors.Is(err, domain.ErrJournalDisabled):
		s.writeError(w, http.StatusNotFound, err, nil)
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err, nil)
		return
	}
	if entries == nil {
		entries = []ports.JournalEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// DispatchAction handles the POST /actions request.
func (s *Server) DispatchAction(w http.ResponseWriter, r *http.Request) {
	var body ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("DispatchAction: invalid request body", "err", err)
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"), nil)
		return
	}

	action, err := domain.DecodeViewAction(body.Type, body.Payload)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	state, err := s.Engine.Dispatch(r.Context(), action)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnknownAction) || errors.Is(err, sanitize.ErrInputTooLarge) || errors.Is(err, sanitize.ErrInvalidUTF8) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("DispatchAction: rejected", "action", body.Type, "err", err)
		s.writeError(w, status, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// workflow adapts an engine workflow to a handler. With withID the user id
// is bound from the path.
func (s *Server) workflow(run func(ctx context.Context, id int) error, withID bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id int
		if withID {
			err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
				runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
			if err != nil || id <= 0 {
				s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter id: %q", chi.URLParam(r, "id")), nil)
				return
			}
		}

		if err := run(r.Context(), id); err != nil {
			s.logger.Info("workflow failed", "path", r.URL.Path, "err", err)
			s.writeError(w, workflowStatus(err), err, s.Engine.State())
			return
		}
		s.writeJSON(w, http.StatusOK, s.Engine.State())
	}
}

func workflowStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidForm):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrRequestFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var watch *string
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watch); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter watch: %w", err), nil)
		return
	}
	var watchList []string
	if watch != nil && *watch != "" {
		for _, part := range strings.Split(*watch, ",") {
			part = strings.TrimSpace(part)
			if !watchParts[part] {
				s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown watch part %q", part), nil)
				return
			}
			watchList = append(watchList, part)
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("SubscribeEvents: streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch, cancel := s.Streams.Subscribe()
	defer cancel()
	s.logger.Info("SSE: client connected", "subscriber_id", id, "watch", watchList)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "subscriber_id", id)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !touchesAny(ev.Diff, watchList) {
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: diff\ndata: %s\n\n", ev.Seq, ev.Data)
			flusher.Flush()
		}
	}
}

func touchesAny(diff *domain.StateDiff, parts []string) bool {
	if len(parts) == 0 {
		return true
	}
	for _, part := range parts {
		if diff.Touches(part) {
			return true
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error, state *domain.State) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), State: state})
}
