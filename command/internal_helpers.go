package command

import (
	"context"
	"time"

	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
)

const (
	activityObjectType = "default_view"
	activityChannel    = "default_views"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeHooks(hooks types.Hooks) types.Hooks {
	return hooks
}

func safeActivitySink(sink types.ActivitySink) types.ActivitySink {
	return sink
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

// resolvedProject prefers the project returned by the scope guard and falls
// back to the requested one when the resolver left it empty.
func resolvedProject(resolved types.ScopeFilter, requested uuid.UUID) uuid.UUID {
	if resolved.ProjectID != uuid.Nil {
		return resolved.ProjectID
	}
	return requested
}

func emitDefaultViewHook(ctx context.Context, hooks types.Hooks, event types.DefaultViewEvent) {
	if hooks.AfterDefaultViewChange == nil {
		return
	}
	hooks.AfterDefaultViewChange(ctx, event)
}

func emitActivityHook(ctx context.Context, hooks types.Hooks, record types.ActivityRecord) {
	if hooks.AfterActivity == nil {
		return
	}
	hooks.AfterActivity(ctx, record)
}

// recordDefaultViewEvent logs the activity record, then fires the activity and
// default view hooks in that order. Sink failures are logged and never fail
// the mutation that already committed.
func recordDefaultViewEvent(ctx context.Context, sink types.ActivitySink, hooks types.Hooks, logger types.Logger, event types.DefaultViewEvent) {
	record := activityFromEvent(event)
	if sink != nil {
		if err := sink.Log(ctx, record); err != nil {
			logger.Error("default view activity log failed", err, "verb", record.Verb, "view_id", event.ViewID)
		}
	}
	emitActivityHook(ctx, hooks, record)
	emitDefaultViewHook(ctx, hooks, event)
}

func activityFromEvent(event types.DefaultViewEvent) types.ActivityRecord {
	data := map[string]any{
		"view_id":       event.ViewID,
		"system_preset": event.SystemPreset,
	}
	if event.ViewName != "" {
		data["view_name"] = event.ViewName
	}
	if event.Scope != "" {
		data["scope"] = string(event.Scope)
	}
	if event.Affected > 0 || event.Action == ActionDefaultViewCleanup {
		data["affected"] = event.Affected
	}
	return types.ActivityRecord{
		UserID:     event.UserID,
		ActorID:    event.ActorID,
		Verb:       event.Action,
		ObjectType: activityObjectType,
		ObjectID:   event.ViewID,
		Channel:    activityChannel,
		ProjectID:  event.ProjectID,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
}
