package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
)

// ClearDefaultViewInput removes the pointer stored in a slot.
type ClearDefaultViewInput struct {
	ProjectID uuid.UUID
	ViewName  string
	Scope     types.DefaultViewScope
	UserID    uuid.UUID
	Actor     types.ActorRef
}

// Type implements gocommand.Message.
func (ClearDefaultViewInput) Type() string {
	return "command.default_view.clear"
}

// Validate implements gocommand.Message.
func (input ClearDefaultViewInput) Validate() error {
	if input.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return validateSlot(input.ProjectID, input.ViewName, input.Scope, input.UserID)
}

// ClearDefaultViewCommand deletes a default view pointer. Clearing an empty
// slot succeeds.
type ClearDefaultViewCommand struct {
	repo     types.DefaultViewRepository
	activity types.ActivitySink
	hooks    types.Hooks
	clock    types.Clock
	logger   types.Logger
	guard    scope.Guard
}

// NewClearDefaultViewCommand constructs the clear handler.
func NewClearDefaultViewCommand(cfg DefaultViewCommandConfig) *ClearDefaultViewCommand {
	return &ClearDefaultViewCommand{
		repo:     cfg.Repository,
		activity: safeActivitySink(cfg.Activity),
		hooks:    safeHooks(cfg.Hooks),
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
		guard:    safeScopeGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[ClearDefaultViewInput] = (*ClearDefaultViewCommand)(nil)

// Execute removes the pointer for the supplied slot.
func (c *ClearDefaultViewCommand) Execute(ctx context.Context, input ClearDefaultViewInput) error {
	if c.repo == nil {
		return types.ErrMissingDefaultViewRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}
	userID := effectiveUser(input.Scope, input.UserID)
	resolved, err := c.guard.Enforce(ctx, input.Actor, types.ScopeFilter{ProjectID: input.ProjectID}, types.PolicyActionDefaultViewsWrite, userID)
	if err != nil {
		return err
	}

	key := types.DefaultViewKey{
		ProjectID: resolvedProject(resolved, input.ProjectID),
		ViewName:  strings.TrimSpace(input.ViewName),
		Scope:     input.Scope,
		UserID:    userID,
	}
	if err := c.repo.DeleteDefaultView(ctx, key); err != nil {
		return err
	}
	c.logger.Debug("default view cleared",
		"project_id", key.ProjectID, "view_name", key.ViewName, "scope", string(key.Scope))

	recordDefaultViewEvent(ctx, c.activity, c.hooks, c.logger, types.DefaultViewEvent{
		ProjectID:  key.ProjectID,
		UserID:     userID,
		ViewName:   key.ViewName,
		Scope:      key.Scope,
		Action:     ActionDefaultViewClear,
		ActorID:    input.Actor.ID,
		OccurredAt: now(c.clock),
	})
	return nil
}
