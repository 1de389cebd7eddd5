package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/roster/internal/logging"
	"github.com/aretw0/roster/pkg/domain"
)

// DispatchFunc applies an action and returns the resulting state.
type DispatchFunc func(ctx context.Context, action domain.Action) *domain.State

// Thunk is an asynchronous action: a multi-step sequence of dispatches around
// external calls. It runs on the caller's goroutine.
type Thunk func(ctx context.Context, dispatch DispatchFunc, getState func() *domain.State) error

// Listener is notified after every dispatch. Listeners run synchronously on
// the dispatching goroutine, outside the store lock; under concurrent
// dispatches they may observe changes out of Seq order.
type Listener func(domain.Change)

// Store holds the single state tree and serializes transitions.
type Store struct {
	mu    sync.Mutex
	state *domain.State
	seq   uint64

	lmu          sync.RWMutex
	listeners    map[uint64]Listener
	nextListener uint64

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) StoreOption {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// WithInitialState replaces the default initial state.
func WithInitialState(state *domain.State) StoreOption {
	return func(s *Store) {
		if state != nil {
			s.state = state
		}
	}
}

// WithClock overrides the time source used for events and update stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a store holding domain.NewState().
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		state:     domain.NewState(),
		listeners: make(map[uint64]Listener),
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot. It must be treated as read-only.
func (s *Store) State() *domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Now returns the store clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Dispatch runs action through the reducer and publishes the result.
func (s *Store) Dispatch(ctx context.Context, action domain.Action) *domain.State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, action)
	s.state = next
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	changed := next != prev
	s.logger.DebugContext(ctx, "dispatch", "seq", seq, "action", action.Type, "changed", changed)

	if s.hooks.OnDispatch != nil {
		s.hooks.OnDispatch(ctx, &domain.DispatchEvent{
			Timestamp: s.now(),
			Seq:       seq,
			Action:    action.Type,
			Changed:   changed,
		})
	}

	change := domain.Change{Seq: seq, Action: action, Prev: prev, Next: next}
	for _, l := range s.snapshotListeners() {
		l(change)
	}
	return next
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) snapshotListeners() []Listener {
	s.lmu.RLock()
	defer s.lmu.RUnlock()

	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	return ls
}

// Run executes a workflow thunk, reporting start and finish through the hooks.
// userID is informational (0 for collection-wide workflows).
func (s *Store) Run(ctx context.Context, workflow string, userID int, thunk Thunk) error {
	start := s.now()
	if s.hooks.OnWorkflowStart != nil {
		s.hooks.OnWorkflowStart(ctx, &domain.WorkflowEvent{
			Timestamp: start,
			Workflow:  workflow,
			UserID:    userID,
		})
	}

	err := thunk(ctx, s.Dispatch, s.State)

	end := s.now()
	outcome := domain.OutcomeOf(err)
	if err != nil {
		s.logger.WarnContext(ctx, "workflow finished with error", "workflow", workflow, "user_id", userID, "outcome", outcome, "err", err)
	} else {
		s.logger.InfoContext(ctx, "workflow finished", "workflow", workflow, "user_id", userID, "duration", end.Sub(start))
	}

	if s.hooks.OnWorkflowFinish != nil {
		s.hooks.OnWorkflowFinish(ctx, &domain.WorkflowEvent{
			Timestamp: end,
			Workflow:  workflow,
			UserID:    userID,
			Duration:  end.Sub(start),
			Outcome:   outcome,
			Err:       err,
		})
	}
	return err
}
