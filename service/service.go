package service

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-tableviews/command"
	"github.com/goliatone/go-tableviews/defaultviews"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/query"
	"github.com/goliatone/go-tableviews/scope"
)

// Service is the entry point for go-tableviews. It wires repositories, the
// resolver, hooks, and command/query facades supplied by the host application.
type Service struct {
	cfg          Config
	commands     Commands
	queries      Queries
	activityRepo types.ActivityRepository
	resolver     DefaultViewResolver
	scopeGuard   scope.Guard
}

// Commands exposes the service command handlers.
type Commands struct {
	SetDefaultView      *command.SetDefaultViewCommand
	ClearDefaultView    *command.ClearDefaultViewCommand
	CleanupDefaultViews *command.CleanupDefaultViewsCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	ResolvedDefaultView *query.ResolvedDefaultViewQuery
	ViewDefaultStatus   *query.ViewDefaultStatusQuery
	ActivityFeed        *query.ActivityFeedQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun-backed or cached repositories, hooks, policies). Record ids
// are minted by the repositories, see defaultviews.RepositoryConfig.IDGen.
type Config struct {
	DefaultViewRepository types.DefaultViewRepository
	DefaultViewResolver   DefaultViewResolver
	ActivitySink          types.ActivitySink
	ActivityRepository    types.ActivityRepository
	FeatureGate           featuregate.FeatureGate
	Hooks                 types.Hooks
	Clock                 types.Clock
	Logger                types.Logger
	ScopeResolver         types.ScopeResolver
	AuthorizationPolicy   types.AuthorizationPolicy
}

// DefaultViewResolver resolves effective defaults and pointer usage.
type DefaultViewResolver interface {
	Resolve(ctx context.Context, input defaultviews.ResolveInput) (*types.ResolvedDefaultView, error)
	Status(ctx context.Context, viewID string) (types.ViewDefaultStatus, error)
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	actRepo := norm.ActivityRepository
	if actRepo == nil {
		if sinkRepo, ok := norm.ActivitySink.(types.ActivityRepository); ok {
			actRepo = sinkRepo
		}
	}
	resolver := norm.DefaultViewResolver
	if resolver == nil && norm.DefaultViewRepository != nil {
		if built, err := defaultviews.NewResolver(defaultviews.ResolverConfig{
			Repository: norm.DefaultViewRepository,
		}); err == nil {
			resolver = built
		} else {
			norm.Logger.Error("go-tableviews: default view resolver initialization failed", err)
		}
	}

	s := &Service{
		cfg:          norm,
		activityRepo: actRepo,
		resolver:     resolver,
		scopeGuard:   scope.Ensure(scope.NewGuard(norm.ScopeResolver, norm.AuthorizationPolicy)),
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Ready reports whether the service has the required dependencies wired in.
// Activity storage is optional.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.DefaultViewRepository != nil &&
		s.resolver != nil
}

// HealthCheck surfaces missing configuration so transports can fail fast at
// startup.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.cfg.DefaultViewRepository == nil {
		return types.ErrMissingDefaultViewRepository
	}
	if s.resolver == nil {
		return types.ErrMissingDefaultViewResolver
	}
	if s.cfg.ActivitySink != nil && s.activityRepo == nil {
		return types.ErrMissingActivityRepository
	}
	return ctx.Err()
}

// ScopeGuard exposes the guard instance used internally so transports can reuse
// the same resolver/policy combination for HTTP adapters.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return scope.NopGuard()
	}
	return scope.Ensure(s.scopeGuard)
}

// ActivitySink returns the configured sink so transports can emit activity
// records for auxiliary workflows.
func (s *Service) ActivitySink() types.ActivitySink {
	if s == nil {
		return nil
	}
	return s.cfg.ActivitySink
}

// Repository returns the configured default view repository.
func (s *Service) Repository() types.DefaultViewRepository {
	if s == nil {
		return nil
	}
	return s.cfg.DefaultViewRepository
}

// GetResolvedDefault returns the effective default view or nil when no
// pointer applies.
func (s *Service) GetResolvedDefault(ctx context.Context, input query.ResolvedDefaultViewInput) (*types.ResolvedDefaultView, error) {
	return s.queries.ResolvedDefaultView.Query(ctx, input)
}

// SetAsDefault stores the pointer and returns the saved row.
func (s *Service) SetAsDefault(ctx context.Context, input command.SetDefaultViewInput) (types.DefaultViewRecord, error) {
	var saved types.DefaultViewRecord
	input.Result = &saved
	if err := s.commands.SetDefaultView.Execute(ctx, input); err != nil {
		return types.DefaultViewRecord{}, err
	}
	return saved, nil
}

// ClearDefault removes the pointer stored in the slot, if any.
func (s *Service) ClearDefault(ctx context.Context, input command.ClearDefaultViewInput) error {
	return s.commands.ClearDefaultView.Execute(ctx, input)
}

// IsViewDefault reports whether the view is used as a default anywhere.
func (s *Service) IsViewDefault(ctx context.Context, input query.ViewDefaultStatusInput) (types.ViewDefaultStatus, error) {
	return s.queries.ViewDefaultStatus.Query(ctx, input)
}

// CleanupOrphanedDefaults removes every pointer to a deleted view and returns
// how many were removed.
func (s *Service) CleanupOrphanedDefaults(ctx context.Context, input command.CleanupDefaultViewsInput) (int, error) {
	removed := 0
	input.Result = &removed
	if err := s.commands.CleanupDefaultViews.Execute(ctx, input); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Service) buildCommands() Commands {
	cfg := command.DefaultViewCommandConfig{
		Repository:  s.cfg.DefaultViewRepository,
		Activity:    s.cfg.ActivitySink,
		Hooks:       s.cfg.Hooks,
		Clock:       s.cfg.Clock,
		Logger:      s.cfg.Logger,
		ScopeGuard:  s.scopeGuard,
		FeatureGate: s.cfg.FeatureGate,
	}
	return Commands{
		SetDefaultView:      command.NewSetDefaultViewCommand(cfg),
		ClearDefaultView:    command.NewClearDefaultViewCommand(cfg),
		CleanupDefaultViews: command.NewCleanupDefaultViewsCommand(cfg),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		ResolvedDefaultView: query.NewResolvedDefaultViewQuery(s.resolver, s.scopeGuard),
		ViewDefaultStatus:   query.NewViewDefaultStatusQuery(s.resolver, s.scopeGuard),
		ActivityFeed:        query.NewActivityFeedQuery(s.activityRepo, s.scopeGuard),
	}
}
