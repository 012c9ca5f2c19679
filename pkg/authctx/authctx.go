package authctx

import (
	"context"
	"strings"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
)

const (
	textCodeActorMissing = "ACTOR_CONTEXT_MISSING"
	textCodeActorInvalid = "ACTOR_CONTEXT_INVALID"
)

// ProjectMetadataKeys are checked, in order, on the actor metadata before the
// tenant claim is used as the project.
var ProjectMetadataKeys = []string{"project_id", "project", "default_project_id"}

// Principal is the authenticated caller of a default view operation together
// with the project scope its credentials carry.
type Principal struct {
	Actor types.ActorRef
	Scope types.ScopeFilter
	Auth  *auth.ActorContext
}

// Resolve reads the go-auth actor from ctx, falling back to JWT claims when the
// middleware did not store an ActorContext.
func Resolve(ctx context.Context) (Principal, error) {
	actor, err := ResolveActorContext(ctx)
	if err != nil {
		return Principal{}, err
	}
	return principalFrom(actor)
}

// ResolveFromRouter resolves the principal stored on a go-router context.
func ResolveFromRouter(ctx router.Context) (Principal, error) {
	if ctx == nil {
		return Principal{}, errors.New("go-tableviews: missing router context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}
	if actor, ok := auth.ActorFromRouterContext(ctx); ok && actor != nil {
		return principalFrom(actor)
	}
	return Resolve(ctx.Context())
}

// ResolveActorContext returns the raw go-auth actor payload.
func ResolveActorContext(ctx context.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, errors.New("go-tableviews: missing request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}
	if actor, ok := auth.ActorFromContext(ctx); ok && actor != nil {
		return actor, nil
	}
	if claims, ok := auth.GetClaims(ctx); ok && claims != nil {
		if actor := auth.ActorContextFromClaims(claims); actor != nil {
			return actor, nil
		}
	}
	return nil, errors.New("go-tableviews: no authenticated actor on request", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeActorMissing)
}

func principalFrom(actor *auth.ActorContext) (Principal, error) {
	ref, err := ActorRef(actor)
	if err != nil {
		return Principal{}, err
	}
	return Principal{
		Actor: ref,
		Scope: ProjectScope(actor),
		Auth:  actor,
	}, nil
}

// ActorRef converts the go-auth actor into the ActorRef used by commands and
// queries. The role becomes the actor type so role based policies can see it.
func ActorRef(actor *auth.ActorContext) (types.ActorRef, error) {
	if actor == nil || strings.TrimSpace(actor.ActorID) == "" {
		return types.ActorRef{}, errors.New("go-tableviews: actor context has no actor id", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	id, err := uuid.Parse(strings.TrimSpace(actor.ActorID))
	if err != nil || id == uuid.Nil {
		return types.ActorRef{}, errors.New("go-tableviews: actor id is not a valid uuid", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}

	role := strings.TrimSpace(actor.Role)
	if role == "" {
		role = strings.TrimSpace(actor.Subject)
	}
	return types.ActorRef{ID: id, Type: role}, nil
}

// ProjectScope derives the project and org an actor is bound to. An explicit
// project in the metadata wins over the tenant claim.
func ProjectScope(actor *auth.ActorContext) types.ScopeFilter {
	if actor == nil {
		return types.ScopeFilter{}
	}
	project := projectFromMetadata(actor.Metadata)
	if project == uuid.Nil {
		project = parseUUID(actor.TenantID)
	}
	return types.ScopeFilter{
		ProjectID: project,
		OrgID:     parseUUID(actor.OrganizationID),
	}
}

func projectFromMetadata(metadata map[string]any) uuid.UUID {
	for _, key := range ProjectMetadataKeys {
		raw, ok := metadata[key]
		if !ok {
			continue
		}
		switch value := raw.(type) {
		case uuid.UUID:
			if value != uuid.Nil {
				return value
			}
		case string:
			if id := parseUUID(value); id != uuid.Nil {
				return id
			}
		}
	}
	return uuid.Nil
}

func parseUUID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}
