package domain

import (
	"context"
	"errors"
	"time"
)

// Workflow names, used for hooks, logs and metric labels.
const (
	WorkflowFetchUsers       = "fetch_users"
	WorkflowSubmitAddUser    = "submit_add_user"
	WorkflowSubmitEditUser   = "submit_edit_user"
	WorkflowSubmitDeleteUser = "submit_delete_user"
)

// Workflow outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// DispatchEvent is emitted after every reducer transition.
type DispatchEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Seq       uint64     `json:"seq"`
	Action    ActionType `json:"action"`
	Changed   bool       `json:"changed"` // false when the reducer returned the same state
}

// WorkflowEvent reports the start or the end of a workflow.
type WorkflowEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Workflow  string        `json:"workflow"`
	UserID    int           `json:"user_id,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"` // set on finish only
	Outcome   string        `json:"outcome,omitempty"`  // set on finish only
	Err       error         `json:"-"`
}

// Change describes one applied transition. Prev and Next are the same
// pointer when the action was a no-op.
type Change struct {
	Seq    uint64
	Action Action
	Prev   *State
	Next   *State
}

// LifecycleHooks defines callbacks for store observability.
type LifecycleHooks struct {
	OnDispatch       func(context.Context, *DispatchEvent)
	OnWorkflowStart  func(context.Context, *WorkflowEvent)
	OnWorkflowFinish func(context.Context, *WorkflowEvent)
}

// OutcomeOf classifies a workflow error.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInvalidForm):
		return OutcomeInvalid
	case errors.Is(err, ErrUserNotFound):
		return OutcomeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	}
	return OutcomeFailed
}
