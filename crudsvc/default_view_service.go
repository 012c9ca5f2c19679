package crudsvc

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-tableviews/command"
	"github.com/goliatone/go-tableviews/crudguard"
	"github.com/goliatone/go-tableviews/defaultviews"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/query"
	"github.com/google/uuid"
)

type defaultViewStore interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*defaultviews.Record, error)
}

// DefaultViewServiceConfig wires dependencies for the default view CRUD adapter.
type DefaultViewServiceConfig struct {
	Guard   GuardAdapter
	Repo    types.DefaultViewRepository
	Store   defaultViewStore
	Set     gocommand.Commander[command.SetDefaultViewInput]
	Clear   gocommand.Commander[command.ClearDefaultViewInput]
	Cleanup gocommand.Commander[command.CleanupDefaultViewsInput]
	Resolve gocommand.Querier[query.ResolvedDefaultViewInput, *types.ResolvedDefaultView]
	Status  gocommand.Querier[query.ViewDefaultStatusInput, types.ViewDefaultStatus]
}

// DefaultViewService routes go-crud operations through the default view
// commands and queries so guard enforcement, hooks, and activity stay intact.
//
// Create and Update both set the pointer for the record's slot. A record
// without user_id targets the project slot unless scope=user is requested, in
// which case the caller's own slot is used.
type DefaultViewService struct {
	guard          GuardAdapter
	repo           types.DefaultViewRepository
	store          defaultViewStore
	set            gocommand.Commander[command.SetDefaultViewInput]
	clear          gocommand.Commander[command.ClearDefaultViewInput]
	cleanup        gocommand.Commander[command.CleanupDefaultViewsInput]
	resolve        gocommand.Querier[query.ResolvedDefaultViewInput, *types.ResolvedDefaultView]
	status         gocommand.Querier[query.ViewDefaultStatusInput, types.ViewDefaultStatus]
	logger         types.Logger
	projectManager ProjectManagerFunc
}

// NewDefaultViewService constructs the adapter.
func NewDefaultViewService(cfg DefaultViewServiceConfig, opts ...ServiceOption) *DefaultViewService {
	options := applyOptions(opts)
	return &DefaultViewService{
		guard:          cfg.Guard,
		repo:           cfg.Repo,
		store:          cfg.Store,
		set:            cfg.Set,
		clear:          cfg.Clear,
		cleanup:        cfg.Cleanup,
		resolve:        cfg.Resolve,
		status:         cfg.Status,
		logger:         options.logger,
		projectManager: options.projectManager,
	}
}

func (s *DefaultViewService) Create(ctx crud.Context, record *defaultviews.Record) (*defaultviews.Record, error) {
	return s.setRecord(ctx, crud.OpCreate, record)
}

func (s *DefaultViewService) CreateBatch(ctx crud.Context, records []*defaultviews.Record) ([]*defaultviews.Record, error) {
	created := make([]*defaultviews.Record, 0, len(records))
	for _, record := range records {
		rec, err := s.setRecord(ctx, crud.OpCreateBatch, record)
		if err != nil {
			return nil, err
		}
		created = append(created, rec)
	}
	return created, nil
}

func (s *DefaultViewService) Update(ctx crud.Context, record *defaultviews.Record) (*defaultviews.Record, error) {
	return s.setRecord(ctx, crud.OpUpdate, record)
}

func (s *DefaultViewService) UpdateBatch(ctx crud.Context, records []*defaultviews.Record) ([]*defaultviews.Record, error) {
	updated := make([]*defaultviews.Record, 0, len(records))
	for _, record := range records {
		rec, err := s.setRecord(ctx, crud.OpUpdateBatch, record)
		if err != nil {
			return nil, err
		}
		updated = append(updated, rec)
	}
	return updated, nil
}

func (s *DefaultViewService) Delete(ctx crud.Context, record *defaultviews.Record) error {
	if s.clear == nil {
		return internalError("default view clear command not wired")
	}
	if record == nil {
		return notSupported(crud.OpDelete)
	}
	domain, err := s.loadForDelete(ctx, record)
	if err != nil {
		return err
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpDelete,
		Scope:     types.ScopeFilter{ProjectID: domain.ProjectID},
		TargetID:  domain.UserID,
	})
	if err != nil {
		return err
	}
	if err := s.enforcePointerAccess(res.Actor, domain.UserID); err != nil {
		return err
	}
	input := command.ClearDefaultViewInput{
		ProjectID: projectFromScope(res.Scope, domain.ProjectID),
		ViewName:  domain.ViewName,
		Scope:     domain.Scope(),
		UserID:    domain.UserID,
		Actor:     res.Actor,
	}
	return mapDomainError(s.clear.Execute(ctx.UserContext(), input))
}

func (s *DefaultViewService) DeleteBatch(ctx crud.Context, records []*defaultviews.Record) error {
	for _, record := range records {
		if err := s.Delete(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// Index lists the pointers taking part in resolution for project_id and
// view_name: the project pointer plus the caller's own (or, for project
// managers, the requested user's) personal pointer.
func (s *DefaultViewService) Index(ctx crud.Context, _ []repository.SelectCriteria) ([]*defaultviews.Record, int, error) {
	if s.repo == nil {
		return nil, 0, internalError("default view repository missing")
	}
	userID, err := queryUUIDStrict(ctx, "user_id")
	if err != nil {
		return nil, 0, err
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpList,
		TargetID:  userID,
	})
	if err != nil {
		return nil, 0, err
	}
	if userID == uuid.Nil {
		userID = res.Actor.ID
	}
	if err := s.enforcePointerAccess(res.Actor, userID); err != nil {
		return nil, 0, err
	}

	var records []types.DefaultViewRecord
	if viewID := strings.TrimSpace(ctx.Query("view_id")); viewID != "" {
		records, err = s.repo.ListDefaultViewsByView(ctx.UserContext(), viewID)
		records = s.visibleRecords(records, res)
	} else {
		records, err = s.repo.ListDefaultViews(ctx.UserContext(), types.DefaultViewFilter{
			ProjectID: res.Scope.ProjectID,
			ViewName:  ctx.Query("view_name"),
			UserID:    userID,
		})
	}
	if err != nil {
		return nil, 0, mapDomainError(err)
	}
	out := make([]*defaultviews.Record, 0, len(records))
	for _, record := range records {
		out = append(out, defaultviews.FromDefaultViewRecord(record))
	}
	return out, len(out), nil
}

func (s *DefaultViewService) Show(ctx crud.Context, id string, _ []repository.SelectCriteria) (*defaultviews.Record, error) {
	if s.store == nil {
		return nil, internalError("default view store missing")
	}
	record, err := s.store.GetByID(ctx.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, goerrors.New("default view not found", goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpRead,
		Scope:     types.ScopeFilter{ProjectID: record.ProjectID},
		TargetID:  record.UserID,
	})
	if err != nil {
		return nil, err
	}
	if record.UserID != uuid.Nil {
		if err := s.enforcePointerAccess(res.Actor, record.UserID); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// ResolveDefault returns the effective default for project_id, view_name and
// the caller (or user_id for project managers). A nil result means no pointer
// applies.
func (s *DefaultViewService) ResolveDefault(ctx crud.Context) (*types.ResolvedDefaultView, error) {
	if s.resolve == nil {
		return nil, internalError("default view resolve query not wired")
	}
	userID, err := queryUUIDStrict(ctx, "user_id")
	if err != nil {
		return nil, err
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpRead,
		TargetID:  userID,
	})
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		userID = res.Actor.ID
	}
	if err := s.enforcePointerAccess(res.Actor, userID); err != nil {
		return nil, err
	}
	resolved, err := s.resolve.Query(ctx.UserContext(), query.ResolvedDefaultViewInput{
		ProjectID: res.Scope.ProjectID,
		ViewName:  ctx.Query("view_name"),
		UserID:    userID,
		Actor:     res.Actor,
	})
	return resolved, mapDomainError(err)
}

// DefaultStatus reports where view_id is currently used as a default.
func (s *DefaultViewService) DefaultStatus(ctx crud.Context) (types.ViewDefaultStatus, error) {
	if s.status == nil {
		return types.ViewDefaultStatus{}, internalError("default view status query not wired")
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpRead,
	})
	if err != nil {
		return types.ViewDefaultStatus{}, err
	}
	status, err := s.status.Query(ctx.UserContext(), query.ViewDefaultStatusInput{
		ViewID:    ctx.Query("view_id"),
		ProjectID: res.Scope.ProjectID,
		Actor:     res.Actor,
	})
	return status, mapDomainError(err)
}

// CleanupDefaults removes every pointer to viewID and reports how many were
// removed.
func (s *DefaultViewService) CleanupDefaults(ctx crud.Context, viewID string) (int, error) {
	if s.cleanup == nil {
		return 0, internalError("default view cleanup command not wired")
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpDelete,
		Action:    types.PolicyActionDefaultViewsCleanup,
	})
	if err != nil {
		return 0, err
	}
	removed := 0
	err = s.cleanup.Execute(ctx.UserContext(), command.CleanupDefaultViewsInput{
		ViewID:    viewID,
		ProjectID: res.Scope.ProjectID,
		Actor:     res.Actor,
		Result:    &removed,
	})
	if err != nil {
		return 0, mapDomainError(err)
	}
	return removed, nil
}

func (s *DefaultViewService) setRecord(ctx crud.Context, op crud.CrudOperation, record *defaultviews.Record) (*defaultviews.Record, error) {
	if s.set == nil {
		return nil, internalError("default view set command not wired")
	}
	if record == nil {
		return nil, notSupported(op)
	}
	domain := defaultviews.ToDefaultViewRecord(record)
	scope := types.ParseDefaultViewScope(ctx.Query("scope"))
	if scope == "" {
		scope = domain.Scope()
	}

	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: op,
		Scope:     types.ScopeFilter{ProjectID: domain.ProjectID},
		TargetID:  domain.UserID,
	})
	if err != nil {
		return nil, err
	}
	userID := domain.UserID
	if scope == types.DefaultViewScopeUser && userID == uuid.Nil {
		userID = res.Actor.ID
	}
	if scope == types.DefaultViewScopeProject {
		userID = uuid.Nil
	}
	if err := s.enforcePointerAccess(res.Actor, userID); err != nil {
		return nil, err
	}

	var saved types.DefaultViewRecord
	input := command.SetDefaultViewInput{
		ProjectID: projectFromScope(res.Scope, domain.ProjectID),
		ViewName:  domain.ViewName,
		ViewID:    domain.ViewID,
		Scope:     scope,
		UserID:    userID,
		Actor:     res.Actor,
		Result:    &saved,
	}
	if err := s.set.Execute(ctx.UserContext(), input); err != nil {
		return nil, mapDomainError(err)
	}
	s.logger.Debug("default view set via crud", "operation", op, "scope", scope, "view_name", input.ViewName)
	return defaultviews.FromDefaultViewRecord(saved), nil
}

// loadForDelete fills in the slot when the transport only supplied an id.
func (s *DefaultViewService) loadForDelete(ctx crud.Context, record *defaultviews.Record) (types.DefaultViewRecord, error) {
	if strings.TrimSpace(record.ViewName) != "" || record.ID == uuid.Nil || s.store == nil {
		return defaultviews.ToDefaultViewRecord(record), nil
	}
	stored, err := s.store.GetByID(ctx.UserContext(), record.ID.String())
	if err != nil {
		return types.DefaultViewRecord{}, err
	}
	return defaultviews.ToDefaultViewRecord(stored), nil
}

// enforcePointerAccess allows actors to manage their own personal pointer;
// project pointers and other users' pointers need a project manager.
func (s *DefaultViewService) enforcePointerAccess(actor types.ActorRef, target uuid.UUID) error {
	if target != uuid.Nil && target == actor.ID {
		return nil
	}
	if s.projectManager != nil && s.projectManager(actor) {
		return nil
	}
	if target == uuid.Nil {
		return forbidden("project defaults require a project manager")
	}
	return forbidden("actors can only manage their own default views")
}

func (s *DefaultViewService) visibleRecords(records []types.DefaultViewRecord, res crudguard.GuardResult) []types.DefaultViewRecord {
	manager := s.projectManager != nil && s.projectManager(res.Actor)
	filtered := make([]types.DefaultViewRecord, 0, len(records))
	for _, record := range records {
		if res.Scope.ProjectID != uuid.Nil && record.ProjectID != res.Scope.ProjectID {
			continue
		}
		if record.UserID != uuid.Nil && record.UserID != res.Actor.ID && !manager {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

func projectFromScope(scope types.ScopeFilter, fallback uuid.UUID) uuid.UUID {
	if scope.ProjectID != uuid.Nil {
		return scope.ProjectID
	}
	return fallback
}
