package scope

import (
	"context"

	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
)

// RolePolicy authorizes default view actions from the actor role alone.
//
//   - project scoped writes (target uuid.Nil) need a role that can manage
//     project defaults
//   - reading or writing another user's pointer needs the same role
//   - cleanup and activity reads only require a project
type RolePolicy struct{}

// NewRolePolicy returns the role based policy.
func NewRolePolicy() types.AuthorizationPolicy {
	return RolePolicy{}
}

// Authorize implements types.AuthorizationPolicy.
func (RolePolicy) Authorize(_ context.Context, check types.PolicyCheck) error {
	if check.Scope.ProjectID == uuid.Nil {
		return types.ErrUnauthorizedScope
	}
	admin := check.Actor.CanManageProjectDefaults()
	switch check.Action {
	case types.PolicyActionDefaultViewsWrite:
		if check.TargetID == uuid.Nil || check.TargetID != check.Actor.ID {
			if !admin {
				return types.ErrUnauthorizedScope
			}
		}
	case types.PolicyActionDefaultViewsRead:
		if check.TargetID != uuid.Nil && check.TargetID != check.Actor.ID && !admin {
			return types.ErrUnauthorizedScope
		}
	}
	return nil
}

// FixedProjectResolver pins every request to a single project, rejecting
// requests for any other one. Embedded deployments serving one project use it
// to ignore caller supplied identifiers.
func FixedProjectResolver(projectID uuid.UUID) types.ScopeResolver {
	return types.ScopeResolverFunc(func(_ context.Context, _ types.ActorRef, requested types.ScopeFilter) (types.ScopeFilter, error) {
		if requested.ProjectID != uuid.Nil && requested.ProjectID != projectID {
			return types.ScopeFilter{}, types.ErrUnauthorizedScope
		}
		scope := requested
		scope.ProjectID = projectID
		return scope, nil
	})
}
