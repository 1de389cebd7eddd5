package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/roster/internal/logging"
	"github.com/aretw0/roster/internal/runtime"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/aretw0/roster/pkg/ports"
	"github.com/aretw0/roster/pkg/sanitize"
)

// ErrNoResource is returned by New when no UserResource was given.
var ErrNoResource = errors.New("a user resource is required")

// journalTimeout bounds a single journal append.
const journalTimeout = 2 * time.Second

// Engine is the high-level entry point of the roster library.
// It owns one store and exposes the view-facing contract: snapshots,
// view actions, the four workflows and change notifications.
type Engine struct {
	store     *runtime.Store
	workflows *runtime.Workflows
	resource  ports.UserResource
	journal   ports.ActionJournal
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
	initial   *domain.State
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithResource sets the remote user collection.
func WithResource(r ports.UserResource) Option {
	return func(e *Engine) {
		e.resource = r
	}
}

// WithJournal records every dispatch in j.
func WithJournal(j ports.ActionJournal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithInitialState starts the store from state instead of the empty state.
func WithInitialState(state *domain.State) Option {
	return func(e *Engine) {
		e.initial = state
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.resource == nil {
		return nil, ErrNoResource
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.now == nil {
		eng.now = time.Now
	}

	eng.store = runtime.NewStore(
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithInitialState(eng.initial),
		runtime.WithClock(eng.now),
	)
	eng.workflows = runtime.NewWorkflows(eng.resource, eng.now)

	if eng.journal != nil {
		eng.store.Subscribe(eng.record)
	}
	return eng, nil
}

// State returns the current snapshot. Treat it as read-only.
func (e *Engine) State() *domain.State {
	return e.store.State()
}

// Users returns a copy of the list in the given username order, or nil
// when no list has been fetched yet.
func (e *Engine) Users(order domain.SortOrder) ([]domain.User, error) {
	list, err := domain.CloneUsers(e.store.State().List)
	if err != nil {
		return nil, fmt.Errorf("copy users: %w", err)
	}
	return domain.SortUsers(list, order), nil
}

// Dispatch applies a view action: form input, validate, show, hide, reset
// and dismissing the request error. Form input is sanitized first.
// Transitions reserved to workflows are rejected with ErrUnknownAction.
func (e *Engine) Dispatch(ctx context.Context, action domain.Action) (*domain.State, error) {
	if !domain.IsViewAction(action.Type) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action.Type)
	}

	if data, ok := action.Payload.(domain.UserFormData); ok {
		clean, err := sanitize.FormData(data)
		if err != nil {
			return nil, err
		}
		action.Payload = clean
	}
	return e.store.Dispatch(ctx, action), nil
}

// FetchUsers loads the list from the resource.
func (e *Engine) FetchUsers(ctx context.Context) error {
	return e.store.Run(ctx, domain.WorkflowFetchUsers, 0, e.workflows.FetchUsers())
}

// SubmitAddUser validates the add form and creates the user.
func (e *Engine) SubmitAddUser(ctx context.Context) error {
	return e.store.Run(ctx, domain.WorkflowSubmitAddUser, 0, e.workflows.SubmitAddUser())
}

// SubmitEditUser validates the edit form and updates user id.
func (e *Engine) SubmitEditUser(ctx context.Context, id int) error {
	return e.store.Run(ctx, domain.WorkflowSubmitEditUser, id, e.workflows.SubmitEditUser(id))
}

// SubmitDeleteUser deletes user id.
func (e *Engine) SubmitDeleteUser(ctx context.Context, id int) error {
	return e.store.Run(ctx, domain.WorkflowSubmitDeleteUser, id, e.workflows.SubmitDeleteUser(id))
}

// Subscribe calls fn after every dispatch and returns a function removing it.
// fn runs on the dispatching goroutine and must not block.
func (e *Engine) Subscribe(fn func(domain.Change)) func() {
	return e.store.Subscribe(fn)
}

// Journal returns the newest limit journal entries, oldest first.
func (e *Engine) Journal(ctx context.Context, limit int) ([]ports.JournalEntry, error) {
	if e.journal == nil {
		return nil, domain.ErrJournalDisabled
	}
	return e.journal.Recent(ctx, limit)
}

func (e *Engine) record(c domain.Change) {
	diff := domain.Diff(c.Prev, c.Next)
	if diff != nil {
		diff.Action = c.Action.Type
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()

	err := e.journal.Append(ctx, ports.JournalEntry{
		Seq:     c.Seq,
		Time:    e.now(),
		Action:  c.Action.Type,
		Payload: c.Action.Payload,
		Diff:    diff,
	})
	if err != nil {
		e.logger.Warn("journal append failed", "seq", c.Seq, "action", c.Action.Type, "err", err)
	}
}
