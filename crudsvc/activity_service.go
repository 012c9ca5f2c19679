package crudsvc

import (
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-crud"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-tableviews/activity"
	"github.com/goliatone/go-tableviews/crudguard"
	"github.com/goliatone/go-tableviews/pkg/types"
)

// ActivityServiceConfig wires dependencies for the CRUD-backed activity feed.
type ActivityServiceConfig struct {
	Guard     GuardAdapter
	FeedQuery gocommand.Querier[types.ActivityFilter, types.ActivityPage]
}

// ActivityService exposes the default view audit trail as a read-only go-crud
// resource. Entries are written by the commands, never through the transport.
type ActivityService struct {
	guard  GuardAdapter
	feed   gocommand.Querier[types.ActivityFilter, types.ActivityPage]
	logger types.Logger
}

// NewActivityService constructs the adapter.
func NewActivityService(cfg ActivityServiceConfig, opts ...ServiceOption) *ActivityService {
	options := applyOptions(opts)
	return &ActivityService{
		guard:  cfg.Guard,
		feed:   cfg.FeedQuery,
		logger: options.logger,
	}
}

func (s *ActivityService) Create(crud.Context, *activity.LogEntry) (*activity.LogEntry, error) {
	return nil, notSupported(crud.OpCreate)
}

func (s *ActivityService) CreateBatch(crud.Context, []*activity.LogEntry) ([]*activity.LogEntry, error) {
	return nil, notSupported(crud.OpCreateBatch)
}

func (s *ActivityService) Update(crud.Context, *activity.LogEntry) (*activity.LogEntry, error) {
	return nil, notSupported(crud.OpUpdate)
}

func (s *ActivityService) UpdateBatch(crud.Context, []*activity.LogEntry) ([]*activity.LogEntry, error) {
	return nil, notSupported(crud.OpUpdateBatch)
}

func (s *ActivityService) Delete(crud.Context, *activity.LogEntry) error {
	return notSupported(crud.OpDelete)
}

func (s *ActivityService) DeleteBatch(crud.Context, []*activity.LogEntry) error {
	return notSupported(crud.OpDeleteBatch)
}

func (s *ActivityService) Index(ctx crud.Context, _ []repository.SelectCriteria) ([]*activity.LogEntry, int, error) {
	if s.feed == nil {
		return nil, 0, internalError("activity feed query unavailable")
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpList,
		Action:    types.PolicyActionActivityRead,
	})
	if err != nil {
		return nil, 0, err
	}
	actorID, err := queryUUIDStrict(ctx, "actor_id")
	if err != nil {
		return nil, 0, err
	}

	filter := types.ActivityFilter{
		Actor:     res.Actor,
		ProjectID: res.Scope.ProjectID,
		ActorID:   actorID,
		Verbs:     queryStringSlice(ctx, "verb"),
		ObjectID:  strings.TrimSpace(ctx.Query("object_id")),
		Since:     queryTime(ctx, "since"),
		Pagination: types.Pagination{
			Limit:  queryInt(ctx, "limit", 50),
			Offset: queryInt(ctx, "offset", 0),
		},
	}
	page, err := s.feed.Query(ctx.UserContext(), filter)
	if err != nil {
		return nil, 0, mapDomainError(err)
	}
	entries := make([]*activity.LogEntry, 0, len(page.Records))
	for _, record := range page.Records {
		entries = append(entries, activity.FromActivityRecord(record))
	}
	s.logger.Debug("activity feed listed", "project_id", filter.ProjectID, "count", len(entries))
	return entries, page.Total, nil
}

func (s *ActivityService) Show(crud.Context, string, []repository.SelectCriteria) (*activity.LogEntry, error) {
	return nil, notSupported(crud.OpRead)
}
