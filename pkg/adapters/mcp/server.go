// Package mcp exposes the roster engine to agents as a Model Context Protocol server.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/roster"
	"github.com/aretw0/roster/internal/logging"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StateURI names the resource holding the current state.
const StateURI = "roster://state"

// Engine defines the interface required by the MCP server.
type Engine interface {
	State() *domain.State
	Users(order domain.SortOrder) ([]domain.User, error)
	Dispatch(ctx context.Context, action domain.Action) (*domain.State, error)
	FetchUsers(ctx context.Context) error
	SubmitAddUser(ctx context.Context) error
	SubmitEditUser(ctx context.Context, id int) error
	SubmitDeleteUser(ctx context.Context, id int) error
}

// StateResponse is the structured result of every state-changing tool.
type StateResponse struct {
	State *domain.State `json:"state" jsonschema_description:"The state after the call"`
}

// UsersResponse is the structured result of list_users.
type UsersResponse struct {
	Users []domain.User `json:"users" jsonschema_description:"Users in the requested username order, null before the first fetch"`
}

// ListUsersArgs are the arguments of list_users.
type ListUsersArgs struct {
	Order string `json:"order,omitempty"`
}

// UserArgs identify a user.
type UserArgs struct {
	ID int `json:"id"`
}

// FormArgs fill a user form.
type FormArgs struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Server wraps the roster Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
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

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("roster-mcp", strings.TrimSpace(roster.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the whole roster state: list, fetch status, forms and the last request error."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("list_users",
		mcp.WithDescription("List the fetched users, optionally sorted by username."),
		mcp.WithString("order", mcp.Description("none, asc or desc"), mcp.Enum("none", "asc", "desc")),
		mcp.WithOutputSchema[UsersResponse](),
	), mcp.NewStructuredToolHandler(s.handleListUsers))

	s.mcpServer.AddTool(mcp.NewTool("fetch_users",
		mcp.WithDescription("Load the user list from the remote collection."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleFetchUsers))

	s.mcpServer.AddTool(mcp.NewTool("add_user",
		mcp.WithDescription("Fill the add form and submit it. Invalid input is reported and nothing is sent."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddUser))

	s.mcpServer.AddTool(mcp.NewTool("edit_user",
		mcp.WithDescription("Fill the edit form and submit it for the given user."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleEditUser))

	s.mcpServer.AddTool(mcp.NewTool("delete_user",
		mcp.WithDescription("Delete the given user remotely and from the list."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("User id")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleDeleteUser))

	s.mcpServer.AddTool(mcp.NewTool("dismiss_error",
		mcp.WithDescription("Clear the last request error."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleDismissError))
}

// Handler methods for structured tools

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (StateResponse, error) {
	return StateResponse{State: s.engine.State()}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ mcp.CallToolRequest, args ListUsersArgs) (UsersResponse, error) {
	order, err := domain.ParseSortOrder(args.Order)
	if err != nil {
		return UsersResponse{}, err
	}
	users, err := s.engine.Users(order)
	if err != nil {
		return UsersResponse{}, err
	}
	return UsersResponse{Users: users}, nil
}

func (s *Server) handleFetchUsers(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (StateResponse, error) {
	if err := s.engine.FetchUsers(ctx); err != nil {
		return StateResponse{}, s.toolError("fetch_users", err)
	}
	return StateResponse{State: s.engine.State()}, nil
}

func (s *Server) handleAddUser(ctx context.Context, _ mcp.CallToolRequest, args FormArgs) (StateResponse, error) {
	data := domain.UserFormData{Name: args.Name, Email: args.Email}
	if _, err := s.engine.Dispatch(ctx, domain.InputForm(domain.FormAddUser, data)); err != nil {
		s.logger.Warn("MCP add_user: input rejected", "err", err)
		return StateResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	if err := s.engine.SubmitAddUser(ctx); err != nil {
		return StateResponse{}, s.toolError("add_user", err)
	}
	return StateResponse{State: s.engine.State()}, nil
}

func (s *Server) handleEditUser(ctx context.Context, _ mcp.CallToolRequest, args FormArgs) (StateResponse, error) {
	if args.ID <= 0 {
		return StateResponse{}, errors.New("id must be a positive integer")
	}
	data := domain.UserFormData{Name: args.Name, Email: args.Email}
	if _, err := s.engine.Dispatch(ctx, domain.InputForm(domain.FormEditUser, data)); err != nil {
		s.logger.Warn("MCP edit_user: input rejected", "err", err)
		return StateResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	if err := s.engine.SubmitEditUser(ctx, args.ID); err != nil {
		return StateResponse{}, s.toolError("edit_user", err)
	}
	return StateResponse{State: s.engine.State()}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, _ mcp.CallToolRequest, args UserArgs) (StateResponse, error) {
	if args.ID <= 0 {
		return StateResponse{}, errors.New("id must be a positive integer")
	}
	if err := s.engine.SubmitDeleteUser(ctx, args.ID); err != nil {
		return StateResponse{}, s.toolError("delete_user", err)
	}
	return StateResponse{State: s.engine.State()}, nil
}

func (s *Server) handleDismissError(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (StateResponse, error) {
	state, err := s.engine.Dispatch(ctx, domain.DismissRequestError())
	if err != nil {
		return StateResponse{}, err
	}
	return StateResponse{State: state}, nil
}

func (s *Server) toolError(tool string, err error) error {
	s.logger.Info("MCP tool failed", "tool", tool, "err", err)
	return fmt.Errorf("%s failed: %w", tool, err)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StateURI, "Current Roster State",
		mcp.WithMIMEType("application/json"),
	), s.readState)
}

func (s *Server) readState(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.engine.State())
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      StateURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
