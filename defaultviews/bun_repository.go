package defaultviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires dependencies for the Bun-backed default view store.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type defaultViewStore interface {
	repository.Repository[*Record]
}

// Repository implements types.DefaultViewRepository.
//
// Writes and id lookups go through defaultViewStore, which may be a cache
// decorator. Reads filtered by closure criteria use direct: the decorator keys
// closures by function pointer, so two filters built by the same closure
// literal would share a cache entry.
type Repository struct {
	defaultViewStore
	direct      repository.Repository[*Record]
	db          *bun.DB
	clock       types.Clock
	idGen       types.IDGenerator
	maxAttempts int
}

// NewRepository constructs the default view repository.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("defaultviews: db or repository required")
	}
	opts := applyRepositoryOptions(options)

	repo := cfg.Repository
	if repo == nil {
		repo = NewRecordRepository(cfg.DB)
	}
	direct := repo
	if _, cached := repo.(*repositorycache.CachedRepository[*Record]); cached {
		if cfg.DB == nil {
			return nil, errors.New("defaultviews: cached repository requires db for uncached reads")
		}
		direct = NewRecordRepository(cfg.DB)
	} else if opts.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		if opts.CacheConfig != nil {
			cacheCfg = *opts.CacheConfig
		}
		cacheService, err := cache.NewCacheService(cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("defaultviews: cache service: %w", err)
		}
		repo = repositorycache.New(repo, cacheService, cache.NewDefaultKeySerializer())
	}

	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		defaultViewStore: repo,
		direct:           direct,
		db:               cfg.DB,
		clock:            clock,
		idGen:            idGen,
		maxAttempts:      opts.MaxUpsertAttempts,
	}, nil
}

// NewRecordRepository builds the plain go-repository-bun store for Record.
func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.NewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(rec *Record) uuid.UUID {
			if rec == nil {
				return uuid.Nil
			}
			return rec.ID
		},
		SetID: func(rec *Record, id uuid.UUID) {
			if rec != nil {
				rec.ID = id
			}
		},
	})
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.DefaultViewRepository    = (*Repository)(nil)
)

// ListDefaultViews returns the project scoped pointer for the view name plus,
// when filter.UserID is set, that user's personal pointer. Pointers owned by
// other users are never returned.
func (r *Repository) ListDefaultViews(ctx context.Context, filter types.DefaultViewFilter) ([]types.DefaultViewRecord, error) {
	viewName := normalizeViewName(filter.ViewName)
	if filter.ProjectID == uuid.Nil {
		return nil, types.ErrProjectIDRequired
	}
	if viewName == "" {
		return nil, types.ErrViewNameRequired
	}
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("project_id = ?", filter.ProjectID).
				Where("view_name = ?", viewName)
			if filter.UserID != uuid.Nil {
				q = q.Where("(user_id IS NULL OR user_id = ?)", filter.UserID)
			} else {
				q = q.Where("user_id IS NULL")
			}
			return q.OrderExpr("created_at ASC")
		},
	}
	rows, _, err := r.direct.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// UpsertDefaultView points the key's slot at viewID, updating the existing
// row in place or creating it. Losing an insert race to a concurrent writer
// is retried as an update.
func (r *Repository) UpsertDefaultView(ctx context.Context, key types.DefaultViewKey, viewID string) (*types.DefaultViewRecord, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	viewID = strings.TrimSpace(viewID)
	if viewID == "" {
		return nil, types.ErrViewIDRequired
	}

	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		now := r.clock.Now()
		existing, err := r.findExisting(ctx, key)
		switch {
		case err == nil && existing != nil:
			payload := *existing
			payload.ViewID = viewID
			payload.UpdatedAt = now
			updated, err := r.Update(ctx, &payload)
			if err != nil {
				return nil, err
			}
			return toDomainPtr(updated), nil
		case repository.IsRecordNotFound(err):
			payload := &Record{
				ID:        r.idGen.UUID(),
				ProjectID: key.ProjectID,
				UserID:    key.UserID,
				ViewName:  key.ViewName,
				ViewID:    viewID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			created, err := r.Create(ctx, payload)
			if err == nil {
				return toDomainPtr(created), nil
			}
			if !r.isUniqueViolation(err) {
				return nil, err
			}
			lastErr = err
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", types.ErrDefaultViewConflict, lastErr)
}

// DeleteDefaultView removes the pointer stored under key. Missing rows are
// not an error.
func (r *Repository) DeleteDefaultView(ctx context.Context, key types.DefaultViewKey) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	existing, err := r.findExisting(ctx, key)
	if repository.IsRecordNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.Delete(ctx, existing)
}

// ListDefaultViewsByView returns every pointer referencing the view id.
func (r *Repository) ListDefaultViewsByView(ctx context.Context, viewID string) ([]types.DefaultViewRecord, error) {
	viewID = strings.TrimSpace(viewID)
	if viewID == "" {
		return nil, types.ErrViewIDRequired
	}
	rows, _, err := r.direct.List(ctx, selectByViewID(viewID))
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// DeleteDefaultViewsByView removes every pointer referencing the view id and
// reports how many were removed. Rows are deleted one by one so cache
// decorators observe each removal.
func (r *Repository) DeleteDefaultViewsByView(ctx context.Context, viewID string) (int, error) {
	viewID = strings.TrimSpace(viewID)
	if viewID == "" {
		return 0, types.ErrViewIDRequired
	}
	rows, _, err := r.direct.List(ctx, selectByViewID(viewID))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, row := range rows {
		if err := r.Delete(ctx, row); err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// findExisting looks up the exact slot. It always reads the store so a retry
// after a lost insert race observes the competing row.
func (r *Repository) findExisting(ctx context.Context, key types.DefaultViewKey) (*Record, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("project_id = ?", key.ProjectID).
				Where("view_name = ?", key.ViewName)
			if key.UserID == uuid.Nil {
				q = q.Where("user_id IS NULL")
			} else {
				q = q.Where("user_id = ?", key.UserID)
			}
			return q.Limit(1)
		},
	}
	rows, _, err := r.direct.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.NewRecordNotFound()
	}
	return rows[0], nil
}

func (r *Repository) isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if repository.IsDuplicatedKey(err) {
		return true
	}
	if r.db != nil && repository.IsDuplicatedKey(repository.MapDatabaseError(err, repository.DetectDriver(r.db))) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// NormalizeKey validates the key and derives the effective user: the supplied
// user for user scope, uuid.Nil for project scope.
func NormalizeKey(key types.DefaultViewKey) (types.DefaultViewKey, error) {
	key.ViewName = normalizeViewName(key.ViewName)
	if key.ProjectID == uuid.Nil {
		return types.DefaultViewKey{}, types.ErrProjectIDRequired
	}
	if key.ViewName == "" {
		return types.DefaultViewKey{}, types.ErrViewNameRequired
	}
	switch key.Scope {
	case types.DefaultViewScopeUser:
		if key.UserID == uuid.Nil {
			return types.DefaultViewKey{}, types.ErrUserIDRequired
		}
	case types.DefaultViewScopeProject:
		key.UserID = uuid.Nil
	default:
		return types.DefaultViewKey{}, types.ErrInvalidScope
	}
	return key, nil
}

func selectByViewID(viewID string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("view_id = ?", viewID).OrderExpr("created_at ASC")
	}
}

func normalizeViewName(name string) string {
	return strings.TrimSpace(name)
}

func toDomain(record *Record) types.DefaultViewRecord {
	if record == nil {
		return types.DefaultViewRecord{}
	}
	return types.DefaultViewRecord{
		ID:        record.ID,
		ProjectID: record.ProjectID,
		UserID:    record.UserID,
		ViewName:  record.ViewName,
		ViewID:    record.ViewID,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func toDomainPtr(record *Record) *types.DefaultViewRecord {
	rec := toDomain(record)
	return &rec
}

func toDomainSlice(rows []*Record) []types.DefaultViewRecord {
	result := make([]types.DefaultViewRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomain(row))
	}
	return result
}

// FromDefaultViewRecord converts a domain record into the Bun model.
func FromDefaultViewRecord(record types.DefaultViewRecord) *Record {
	return &Record{
		ID:        record.ID,
		ProjectID: record.ProjectID,
		UserID:    record.UserID,
		ViewName:  normalizeViewName(record.ViewName),
		ViewID:    strings.TrimSpace(record.ViewID),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

// ToDefaultViewRecord converts the Bun model into the domain record.
func ToDefaultViewRecord(record *Record) types.DefaultViewRecord {
	return toDomain(record)
}
