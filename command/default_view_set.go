package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
)

// Default view activity verbs.
const (
	ActionDefaultViewSet     = "default_view.set"
	ActionDefaultViewClear   = "default_view.clear"
	ActionDefaultViewCleanup = "default_view.cleanup"
)

// DefaultViewCommandConfig wires dependencies for default view commands.
type DefaultViewCommandConfig struct {
	Repository  types.DefaultViewRepository
	Activity    types.ActivitySink
	Hooks       types.Hooks
	Clock       types.Clock
	Logger      types.Logger
	ScopeGuard  scope.Guard
	FeatureGate featuregate.FeatureGate
}

// SetDefaultViewInput points a (project, view name, scope) slot at a view.
// UserID is required for user scope and ignored for project scope.
type SetDefaultViewInput struct {
	ProjectID uuid.UUID
	ViewName  string
	ViewID    string
	Scope     types.DefaultViewScope
	UserID    uuid.UUID
	Actor     types.ActorRef
	Result    *types.DefaultViewRecord
}

// Type implements gocommand.Message.
func (SetDefaultViewInput) Type() string {
	return "command.default_view.set"
}

// Validate implements gocommand.Message.
func (input SetDefaultViewInput) Validate() error {
	if input.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	if strings.TrimSpace(input.ViewID) == "" {
		return ErrViewIDRequired
	}
	return validateSlot(input.ProjectID, input.ViewName, input.Scope, input.UserID)
}

// SetDefaultViewCommand upserts a default view pointer.
type SetDefaultViewCommand struct {
	repo     types.DefaultViewRepository
	activity types.ActivitySink
	hooks    types.Hooks
	clock    types.Clock
	logger   types.Logger
	guard    scope.Guard
	gate     featuregate.FeatureGate
}

// NewSetDefaultViewCommand constructs the handler.
func NewSetDefaultViewCommand(cfg DefaultViewCommandConfig) *SetDefaultViewCommand {
	return &SetDefaultViewCommand{
		repo:     cfg.Repository,
		activity: safeActivitySink(cfg.Activity),
		hooks:    safeHooks(cfg.Hooks),
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
		guard:    safeScopeGuard(cfg.ScopeGuard),
		gate:     cfg.FeatureGate,
	}
}

var _ gocommand.Commander[SetDefaultViewInput] = (*SetDefaultViewCommand)(nil)

// Execute validates and persists the pointer.
func (c *SetDefaultViewCommand) Execute(ctx context.Context, input SetDefaultViewInput) error {
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
	projectID := resolvedProject(resolved, input.ProjectID)

	if input.Scope == types.DefaultViewScopeUser {
		enabled, err := featureEnabled(ctx, c.gate, FeatureUserDefaults, resolved, userID)
		if err != nil {
			return err
		}
		if !enabled {
			return ErrUserDefaultsDisabled
		}
	}

	key := types.DefaultViewKey{
		ProjectID: projectID,
		ViewName:  strings.TrimSpace(input.ViewName),
		Scope:     input.Scope,
		UserID:    userID,
	}
	viewID := strings.TrimSpace(input.ViewID)
	saved, err := c.repo.UpsertDefaultView(ctx, key, viewID)
	if err != nil {
		return err
	}
	if input.Result != nil && saved != nil {
		*input.Result = *saved
	}
	c.logger.Debug("default view set",
		"project_id", projectID, "view_name", key.ViewName, "scope", string(key.Scope), "view_id", viewID)

	recordDefaultViewEvent(ctx, c.activity, c.hooks, c.logger, types.DefaultViewEvent{
		ProjectID:    projectID,
		UserID:       userID,
		ViewName:     key.ViewName,
		ViewID:       viewID,
		Scope:        key.Scope,
		Action:       ActionDefaultViewSet,
		ActorID:      input.Actor.ID,
		Affected:     1,
		SystemPreset: types.IsSystemPreset(viewID),
		OccurredAt:   now(c.clock),
	})
	return nil
}

// validateSlot enforces the rules shared by set and clear.
func validateSlot(projectID uuid.UUID, viewName string, scope types.DefaultViewScope, userID uuid.UUID) error {
	if projectID == uuid.Nil {
		return ErrProjectIDRequired
	}
	if strings.TrimSpace(viewName) == "" {
		return ErrViewNameRequired
	}
	if !scope.Valid() {
		return ErrInvalidScope
	}
	if scope == types.DefaultViewScopeUser && userID == uuid.Nil {
		return ErrUserIDRequired
	}
	return nil
}

func effectiveUser(scope types.DefaultViewScope, userID uuid.UUID) uuid.UUID {
	if scope == types.DefaultViewScopeUser {
		return userID
	}
	return uuid.Nil
}
