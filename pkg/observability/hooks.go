package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/roster/pkg/domain"
)

// LogHooks returns hooks that write every store event to logger.
// Dispatches are logged at debug, workflow ends at info or warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.DebugContext(ctx, "action_dispatched",
				"seq", e.Seq,
				"action", e.Action,
				"changed", e.Changed,
			)
		},
		OnWorkflowStart: func(ctx context.Context, e *domain.WorkflowEvent) {
			logger.InfoContext(ctx, "workflow_start", "workflow", e.Workflow, "user_id", e.UserID)
		},
		OnWorkflowFinish: func(ctx context.Context, e *domain.WorkflowEvent) {
			level := slog.LevelInfo
			if e.Outcome != domain.OutcomeOK {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "workflow_finish",
				"workflow", e.Workflow,
				"user_id", e.UserID,
				"outcome", e.Outcome,
				"duration", e.Duration,
			)
		},
	}
}

// Combine merges several hook sets. Each callback runs in argument order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks

	var onDispatch []func(context.Context, *domain.DispatchEvent)
	var onStart, onFinish []func(context.Context, *domain.WorkflowEvent)
	for _, h := range hooks {
		if h.OnDispatch != nil {
			onDispatch = append(onDispatch, h.OnDispatch)
		}
		if h.OnWorkflowStart != nil {
			onStart = append(onStart, h.OnWorkflowStart)
		}
		if h.OnWorkflowFinish != nil {
			onFinish = append(onFinish, h.OnWorkflowFinish)
		}
	}

	if len(onDispatch) > 0 {
		combined.OnDispatch = func(ctx context.Context, e *domain.DispatchEvent) {
			for _, fn := range onDispatch {
				fn(ctx, e)
			}
		}
	}
	if len(onStart) > 0 {
		combined.OnWorkflowStart = fanOut(onStart)
	}
	if len(onFinish) > 0 {
		combined.OnWorkflowFinish = fanOut(onFinish)
	}
	return combined
}

func fanOut(fns []func(context.Context, *domain.WorkflowEvent)) func(context.Context, *domain.WorkflowEvent) {
	return func(ctx context.Context, e *domain.WorkflowEvent) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
