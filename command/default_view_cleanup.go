package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
)

// CleanupDefaultViewsInput removes every pointer referencing a deleted view.
// ProjectID is optional and only narrows the scope guard check.
type CleanupDefaultViewsInput struct {
	ViewID    string
	ProjectID uuid.UUID
	Actor     types.ActorRef
	Result    *int
}

// Type implements gocommand.Message.
func (CleanupDefaultViewsInput) Type() string {
	return "command.default_view.cleanup"
}

// Validate implements gocommand.Message.
func (input CleanupDefaultViewsInput) Validate() error {
	if input.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	if strings.TrimSpace(input.ViewID) == "" {
		return ErrViewIDRequired
	}
	return nil
}

// CleanupDefaultViewsCommand deletes orphaned pointers after a view preset is
// removed. Zero matches is a successful no-op.
type CleanupDefaultViewsCommand struct {
	repo     types.DefaultViewRepository
	activity types.ActivitySink
	hooks    types.Hooks
	clock    types.Clock
	logger   types.Logger
	guard    scope.Guard
}

// NewCleanupDefaultViewsCommand constructs the cleanup handler.
func NewCleanupDefaultViewsCommand(cfg DefaultViewCommandConfig) *CleanupDefaultViewsCommand {
	return &CleanupDefaultViewsCommand{
		repo:     cfg.Repository,
		activity: safeActivitySink(cfg.Activity),
		hooks:    safeHooks(cfg.Hooks),
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
		guard:    safeScopeGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[CleanupDefaultViewsInput] = (*CleanupDefaultViewsCommand)(nil)

// Execute removes all pointers to the view.
func (c *CleanupDefaultViewsCommand) Execute(ctx context.Context, input CleanupDefaultViewsInput) error {
	if c.repo == nil {
		return types.ErrMissingDefaultViewRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}
	resolved, err := c.guard.Enforce(ctx, input.Actor, types.ScopeFilter{ProjectID: input.ProjectID}, types.PolicyActionDefaultViewsCleanup, uuid.Nil)
	if err != nil {
		return err
	}

	viewID := strings.TrimSpace(input.ViewID)
	removed, err := c.repo.DeleteDefaultViewsByView(ctx, viewID)
	if err != nil {
		return err
	}
	if input.Result != nil {
		*input.Result = removed
	}
	c.logger.Info("default views cleaned up", "view_id", viewID, "removed", removed)

	recordDefaultViewEvent(ctx, c.activity, c.hooks, c.logger, types.DefaultViewEvent{
		ProjectID:    resolvedProject(resolved, input.ProjectID),
		ViewID:       viewID,
		Action:       ActionDefaultViewCleanup,
		ActorID:      input.Actor.ID,
		Affected:     removed,
		SystemPreset: types.IsSystemPreset(viewID),
		OccurredAt:   now(c.clock),
	})
	return nil
}
