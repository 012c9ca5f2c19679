package defaultviews

import (
	"context"
	"fmt"
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
)

const (
	snapshotKeyViewID    = "view_id"
	snapshotKeyScope     = "scope"
	snapshotKeyPointerID = "pointer_id"
)

// ResolverConfig wires dependencies for the default view resolver.
type ResolverConfig struct {
	Repository types.DefaultViewRepository
}

// Resolver layers project and user pointers via go-options. The user layer
// outranks the project layer and wins whole: fields are never mixed across
// layers.
type Resolver struct {
	repo types.DefaultViewRepository
}

// ResolveInput identifies the table context a default view is requested for.
type ResolveInput struct {
	ProjectID uuid.UUID
	ViewName  string
	UserID    uuid.UUID
}

// NewResolver constructs a default view resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Repository == nil {
		return nil, fmt.Errorf("defaultviews: repository required")
	}
	return &Resolver{repo: cfg.Repository}, nil
}

// Resolve returns the effective default for the input, or nil when neither a
// personal nor a project pointer exists.
func (r *Resolver) Resolve(ctx context.Context, input ResolveInput) (*types.ResolvedDefaultView, error) {
	records, err := r.repo.ListDefaultViews(ctx, types.DefaultViewFilter{
		ProjectID: input.ProjectID,
		ViewName:  input.ViewName,
		UserID:    input.UserID,
	})
	if err != nil {
		return nil, err
	}

	var project, personal *types.DefaultViewRecord
	for i := range records {
		rec := records[i]
		switch {
		case rec.UserID == uuid.Nil:
			project = &rec
		case input.UserID != uuid.Nil && rec.UserID == input.UserID:
			personal = &rec
		}
	}
	if project == nil && personal == nil {
		return nil, nil
	}

	layers := []opts.Layer[map[string]any]{
		newLayer(types.DefaultViewScopeProject, input, project),
	}
	if input.UserID != uuid.Nil {
		layers = append(layers, newLayer(types.DefaultViewScopeUser, input, personal))
	}
	stack, err := opts.NewStack(layers...)
	if err != nil {
		return nil, err
	}
	merged, err := stack.Merge()
	if err != nil {
		return nil, err
	}
	return resolvedFromSnapshot(merged.Value), nil
}

// Status reports whether the view is referenced by any default pointer.
func (r *Resolver) Status(ctx context.Context, viewID string) (types.ViewDefaultStatus, error) {
	records, err := r.repo.ListDefaultViewsByView(ctx, viewID)
	if err != nil {
		return types.ViewDefaultStatus{}, err
	}
	return StatusFromRecords(records), nil
}

// StatusFromRecords folds pointer rows into a ViewDefaultStatus.
func StatusFromRecords(records []types.DefaultViewRecord) types.ViewDefaultStatus {
	status := types.ViewDefaultStatus{AffectedCount: len(records)}
	for _, rec := range records {
		switch rec.Scope() {
		case types.DefaultViewScopeUser:
			status.IsUserDefault = true
		case types.DefaultViewScopeProject:
			status.IsProjectDefault = true
		}
	}
	return status
}

// newLayer builds one scope layer. Absent pointers contribute a nil snapshot
// so lower layers fall through untouched.
func newLayer(scope types.DefaultViewScope, input ResolveInput, rec *types.DefaultViewRecord) opts.Layer[map[string]any] {
	var snapshot map[string]any
	snapshotID := string(scope)
	if rec != nil {
		snapshot = map[string]any{
			snapshotKeyViewID:    rec.ViewID,
			snapshotKeyScope:     string(scope),
			snapshotKeyPointerID: rec.ID.String(),
		}
		snapshotID = rec.ID.String()
	}
	layerScope := opts.NewScope(string(scope), scopePriority(scope),
		opts.WithScopeLabel(scopeLabel(scope)),
		opts.WithScopeMetadata(scopeMetadata(scope, input)))
	return opts.NewLayer(layerScope, snapshot, opts.WithSnapshotID[map[string]any](snapshotID))
}

func resolvedFromSnapshot(values map[string]any) *types.ResolvedDefaultView {
	viewID, _ := values[snapshotKeyViewID].(string)
	if strings.TrimSpace(viewID) == "" {
		return nil
	}
	scope, _ := values[snapshotKeyScope].(string)
	resolved := &types.ResolvedDefaultView{
		ViewID: viewID,
		Scope:  types.ParseDefaultViewScope(scope),
	}
	if raw, ok := values[snapshotKeyPointerID].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			resolved.PointerID = id
		}
	}
	return resolved
}

func scopePriority(scope types.DefaultViewScope) int {
	if scope == types.DefaultViewScopeUser {
		return opts.ScopePriorityUser
	}
	return opts.ScopePriorityOrg
}

func scopeLabel(scope types.DefaultViewScope) string {
	if scope == types.DefaultViewScopeUser {
		return "Personal default"
	}
	return "Project default"
}

func scopeMetadata(scope types.DefaultViewScope, input ResolveInput) map[string]any {
	meta := map[string]any{
		"project_id": input.ProjectID.String(),
		"view_name":  strings.TrimSpace(input.ViewName),
	}
	if scope == types.DefaultViewScopeUser {
		meta["user_id"] = input.UserID.String()
	}
	return meta
}
