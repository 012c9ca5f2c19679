package crudguard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableviews/pkg/authctx"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
)

const (
	textCodeScopeDenied          = "SCOPE_DENIED"
	textCodeScopeEnforcementFail = "SCOPE_ENFORCEMENT_FAILED"
	textCodeMissingPolicy        = "SCOPE_POLICY_MISSING"
	textCodeMissingContext       = "CONTEXT_MISSING"
	textCodeInvalidProject       = "PROJECT_ID_INVALID"
)

// ProjectQueryKey is the query parameter carrying the requested project.
const ProjectQueryKey = "project_id"

// ScopeExtractor derives the project scope a request asks for. It runs after
// the principal is resolved and before the scope guard.
type ScopeExtractor func(ctx crud.Context, principal authctx.Principal) (types.ScopeFilter, error)

// Config drives Adapter construction.
type Config struct {
	Guard          scope.Guard
	Logger         types.Logger
	PolicyMap      map[crud.CrudOperation]types.PolicyAction
	ScopeExtractor ScopeExtractor
	FallbackAction types.PolicyAction
}

// Adapter turns go-crud operations into scope guard enforcement calls.
type Adapter struct {
	guard          scope.Guard
	logger         types.Logger
	scopeExtractor ScopeExtractor
	policyMap      map[crud.CrudOperation]types.PolicyAction
	fallbackAction types.PolicyAction
}

// GuardInput describes one guarded request.
type GuardInput struct {
	Context   crud.Context
	Operation crud.CrudOperation
	// Action overrides the policy map for operations that do not fit a CRUD
	// verb, e.g. cleanup.
	Action types.PolicyAction
	// TargetID is the pointer owner; uuid.Nil for project defaults.
	TargetID uuid.UUID
	// Scope pins the project of an existing record over the requested one.
	Scope types.ScopeFilter
}

// GuardResult carries the caller and the project scope the guard granted.
type GuardResult struct {
	Actor     types.ActorRef
	Scope     types.ScopeFilter
	Operation crud.CrudOperation
	Action    types.PolicyAction
}

// ActorScopeExtractor requests the project bound to the caller's credentials.
func ActorScopeExtractor(_ crud.Context, principal authctx.Principal) (types.ScopeFilter, error) {
	return principal.Scope, nil
}

// ProjectScopeExtractor lets the project_id query parameter select the
// project; without it the caller's own project is used. Malformed identifiers
// are rejected before the guard runs.
func ProjectScopeExtractor(ctx crud.Context, principal authctx.Principal) (types.ScopeFilter, error) {
	requested := principal.Scope
	if ctx == nil {
		return requested, nil
	}
	raw := strings.TrimSpace(ctx.Query(ProjectQueryKey))
	if raw == "" {
		return requested, nil
	}
	projectID, err := uuid.Parse(raw)
	if err != nil || projectID == uuid.Nil {
		return types.ScopeFilter{}, goerrors.New(fmt.Sprintf("go-tableviews: invalid %s %q", ProjectQueryKey, raw), goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeInvalidProject)
	}
	requested.ProjectID = projectID
	return requested, nil
}

// NewAdapter constructs a Guard adapter and validates the supplied config.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Guard == nil {
		return nil, goerrors.New("go-tableviews: scope guard is required", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeScopeEnforcementFail)
	}
	if len(cfg.PolicyMap) == 0 && cfg.FallbackAction == "" {
		return nil, goerrors.New("go-tableviews: policy map or fallback action must be provided", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeMissingPolicy)
	}

	extractor := cfg.ScopeExtractor
	if extractor == nil {
		extractor = ProjectScopeExtractor
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	return &Adapter{
		guard:          cfg.Guard,
		logger:         logger,
		scopeExtractor: extractor,
		policyMap:      clonePolicyMap(cfg.PolicyMap),
		fallbackAction: cfg.FallbackAction,
	}, nil
}

// Enforce resolves the principal, picks the project, and runs the scope guard
// with the action mapped from the operation.
func (a *Adapter) Enforce(in GuardInput) (GuardResult, error) {
	if in.Context == nil {
		return GuardResult{}, goerrors.New("go-tableviews: crudguard requires a context", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeMissingContext)
	}

	action, err := a.action(in)
	if err != nil {
		return GuardResult{}, err
	}

	ctx := in.Context.UserContext()
	principal, err := authctx.Resolve(ctx)
	if err != nil {
		return GuardResult{}, err
	}

	requested, err := a.scopeExtractor(in.Context, principal)
	if err != nil {
		return GuardResult{}, err
	}
	if in.Scope.ProjectID != uuid.Nil {
		requested.ProjectID = in.Scope.ProjectID
	}
	if in.Scope.OrgID != uuid.Nil {
		requested.OrgID = in.Scope.OrgID
	}

	resolved, err := a.guard.Enforce(ctx, principal.Actor, requested, action, in.TargetID)
	if err != nil {
		a.logger.Debug("crudguard: scope guard rejected request",
			"operation", string(in.Operation),
			"action", string(action),
			"project_id", requested.ProjectID.String(),
		)
		return GuardResult{}, wrapGuardError(err, action)
	}

	return GuardResult{
		Actor:     principal.Actor,
		Scope:     resolved,
		Operation: in.Operation,
		Action:    action,
	}, nil
}

func (a *Adapter) action(in GuardInput) (types.PolicyAction, error) {
	if in.Action != "" {
		return in.Action, nil
	}
	if act := a.policyMap[in.Operation]; act != "" {
		return act, nil
	}
	if a.fallbackAction != "" {
		return a.fallbackAction, nil
	}
	return "", goerrors.New(fmt.Sprintf("go-tableviews: no policy action configured for %s", in.Operation), goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeMissingPolicy)
}

func wrapGuardError(err error, action types.PolicyAction) error {
	if errors.Is(err, types.ErrUnauthorizedScope) {
		return goerrors.Wrap(err, goerrors.CategoryAuthz, fmt.Sprintf("go-tableviews: %s denied for the requested project", action)).
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeScopeDenied)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("go-tableviews: scope guard failed for action %s", action)).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeScopeEnforcementFail)
}
