package query

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tableviews/defaultviews"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
)

// ResolvedDefaultViewInput identifies the table context to resolve.
type ResolvedDefaultViewInput struct {
	ProjectID uuid.UUID
	ViewName  string
	UserID    uuid.UUID
	Actor     types.ActorRef
}

// Type implements gocommand.Message.
func (ResolvedDefaultViewInput) Type() string {
	return "query.default_view.resolve"
}

// Validate implements gocommand.Message.
func (input ResolvedDefaultViewInput) Validate() error {
	if input.Actor.ID == uuid.Nil {
		return types.ErrActorRequired
	}
	if input.ProjectID == uuid.Nil {
		return types.ErrProjectIDRequired
	}
	if strings.TrimSpace(input.ViewName) == "" {
		return types.ErrViewNameRequired
	}
	return nil
}

type defaultViewResolver interface {
	Resolve(ctx context.Context, input defaultviews.ResolveInput) (*types.ResolvedDefaultView, error)
	Status(ctx context.Context, viewID string) (types.ViewDefaultStatus, error)
}

// ResolvedDefaultViewQuery returns the effective default view. A nil result
// means no pointer applies and the caller falls back to its own default.
type ResolvedDefaultViewQuery struct {
	resolver defaultViewResolver
	guard    scope.Guard
}

// NewResolvedDefaultViewQuery constructs the query helper.
func NewResolvedDefaultViewQuery(resolver defaultViewResolver, guard scope.Guard) *ResolvedDefaultViewQuery {
	return &ResolvedDefaultViewQuery{
		resolver: resolver,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[ResolvedDefaultViewInput, *types.ResolvedDefaultView] = (*ResolvedDefaultViewQuery)(nil)

// Query resolves the default for the input context.
func (q *ResolvedDefaultViewQuery) Query(ctx context.Context, input ResolvedDefaultViewInput) (*types.ResolvedDefaultView, error) {
	if q.resolver == nil {
		return nil, types.ErrMissingDefaultViewResolver
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	scope, err := q.guard.Enforce(ctx, input.Actor, types.ScopeFilter{ProjectID: input.ProjectID}, types.PolicyActionDefaultViewsRead, input.UserID)
	if err != nil {
		return nil, err
	}
	projectID := input.ProjectID
	if scope.ProjectID != uuid.Nil {
		projectID = scope.ProjectID
	}
	return q.resolver.Resolve(ctx, defaultviews.ResolveInput{
		ProjectID: projectID,
		ViewName:  input.ViewName,
		UserID:    input.UserID,
	})
}

// ViewDefaultStatusInput identifies the view preset to inspect.
type ViewDefaultStatusInput struct {
	ViewID    string
	ProjectID uuid.UUID
	Actor     types.ActorRef
}

// Type implements gocommand.Message.
func (ViewDefaultStatusInput) Type() string {
	return "query.default_view.status"
}

// Validate implements gocommand.Message.
func (input ViewDefaultStatusInput) Validate() error {
	if input.Actor.ID == uuid.Nil {
		return types.ErrActorRequired
	}
	if strings.TrimSpace(input.ViewID) == "" {
		return types.ErrViewIDRequired
	}
	return nil
}

// ViewDefaultStatusQuery reports where a view is used as a default, typically
// before confirming a preset delete.
type ViewDefaultStatusQuery struct {
	resolver defaultViewResolver
	guard    scope.Guard
}

// NewViewDefaultStatusQuery constructs the status helper.
func NewViewDefaultStatusQuery(resolver defaultViewResolver, guard scope.Guard) *ViewDefaultStatusQuery {
	return &ViewDefaultStatusQuery{
		resolver: resolver,
		guard:    safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[ViewDefaultStatusInput, types.ViewDefaultStatus] = (*ViewDefaultStatusQuery)(nil)

// Query returns the default status for the view.
func (q *ViewDefaultStatusQuery) Query(ctx context.Context, input ViewDefaultStatusInput) (types.ViewDefaultStatus, error) {
	if q.resolver == nil {
		return types.ViewDefaultStatus{}, types.ErrMissingDefaultViewResolver
	}
	if err := input.Validate(); err != nil {
		return types.ViewDefaultStatus{}, err
	}
	if _, err := q.guard.Enforce(ctx, input.Actor, types.ScopeFilter{ProjectID: input.ProjectID}, types.PolicyActionDefaultViewsRead, uuid.Nil); err != nil {
		return types.ViewDefaultStatus{}, err
	}
	return q.resolver.Status(ctx, strings.TrimSpace(input.ViewID))
}
