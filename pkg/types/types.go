package types

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultViewScope identifies who a default view pointer applies to.
type DefaultViewScope string

const (
	// DefaultViewScopeProject marks a pointer shared by every member of the project.
	DefaultViewScopeProject DefaultViewScope = "project"
	// DefaultViewScopeUser marks a personal pointer that overrides the project one.
	DefaultViewScopeUser DefaultViewScope = "user"
)

// Valid reports whether the scope is one of the known values.
func (s DefaultViewScope) Valid() bool {
	return s == DefaultViewScopeProject || s == DefaultViewScopeUser
}

// ParseDefaultViewScope normalizes transport values ("User", " project ").
// Unknown values return an empty scope.
func ParseDefaultViewScope(value string) DefaultViewScope {
	switch DefaultViewScope(strings.ToLower(strings.TrimSpace(value))) {
	case DefaultViewScopeProject:
		return DefaultViewScopeProject
	case DefaultViewScopeUser:
		return DefaultViewScopeUser
	default:
		return ""
	}
}

// SystemPresetPrefix marks view identifiers that reference built-in presets
// which are never persisted as view preset rows.
const SystemPresetPrefix = "__system_"

// IsSystemPreset reports whether the view id points at a built-in preset.
func IsSystemPreset(viewID string) bool {
	return strings.HasPrefix(strings.TrimSpace(viewID), SystemPresetPrefix)
}

// ScopeFilter carries the project (and optional org) a request is bound to.
type ScopeFilter struct {
	OrgID     uuid.UUID
	ProjectID uuid.UUID
}

// Pagination supports query pagination across admin panels.
type Pagination struct {
	Limit  int
	Offset int
}

// DefaultViewKey addresses a single pointer slot. UserID is ignored for
// project scoped keys.
type DefaultViewKey struct {
	ProjectID uuid.UUID
	ViewName  string
	Scope     DefaultViewScope
	UserID    uuid.UUID
}

// DefaultViewRecord represents a stored default view pointer. A uuid.Nil
// UserID denotes the project scoped slot.
type DefaultViewRecord struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	UserID    uuid.UUID
	ViewName  string
	ViewID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Scope derives the pointer scope from the stored user column.
func (r DefaultViewRecord) Scope() DefaultViewScope {
	if r.UserID == uuid.Nil {
		return DefaultViewScopeProject
	}
	return DefaultViewScopeUser
}

// Key returns the composite key the record is stored under.
func (r DefaultViewRecord) Key() DefaultViewKey {
	return DefaultViewKey{
		ProjectID: r.ProjectID,
		ViewName:  r.ViewName,
		Scope:     r.Scope(),
		UserID:    r.UserID,
	}
}

// DefaultViewFilter selects the pointers that take part in resolution: the
// project scoped row plus, when UserID is set, that user's personal row.
type DefaultViewFilter struct {
	ProjectID uuid.UUID
	ViewName  string
	UserID    uuid.UUID
}

// ResolvedDefaultView is the outcome of default view resolution.
type ResolvedDefaultView struct {
	ViewID    string
	Scope     DefaultViewScope
	PointerID uuid.UUID
}

// ViewDefaultStatus reports where a view is currently used as a default.
type ViewDefaultStatus struct {
	IsUserDefault    bool
	IsProjectDefault bool
	AffectedCount    int
}

// DefaultViewRepository exposes storage helpers for default view pointers.
type DefaultViewRepository interface {
	ListDefaultViews(ctx context.Context, filter DefaultViewFilter) ([]DefaultViewRecord, error)
	UpsertDefaultView(ctx context.Context, key DefaultViewKey, viewID string) (*DefaultViewRecord, error)
	DeleteDefaultView(ctx context.Context, key DefaultViewKey) error
	ListDefaultViewsByView(ctx context.Context, viewID string) ([]DefaultViewRecord, error)
	DeleteDefaultViewsByView(ctx context.Context, viewID string) (int, error)
}

// DefaultViewEvent signals pointer mutations so downstream systems can
// invalidate caches or push notifications.
type DefaultViewEvent struct {
	ProjectID    uuid.UUID
	UserID       uuid.UUID
	ViewName     string
	ViewID       string
	Scope        DefaultViewScope
	Action       string
	ActorID      uuid.UUID
	Affected     int
	SystemPreset bool
	OccurredAt   time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterDefaultViewChange func(context.Context, DefaultViewEvent)
	AfterActivity          func(context.Context, ActivityRecord)
}

// ActivityRecord describes sink inputs and is shared across sink and query layers.
type ActivityRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	ProjectID  uuid.UUID
	Data       map[string]any
	OccurredAt time.Time
}

// ActivitySink is the minimal DI contract for emitting activity. Keep it stable
// and limited to Log so downstream modules can swap sinks without breaking
// changes.
type ActivitySink interface {
	Log(context.Context, ActivityRecord) error
}

// ActivityFilter narrows activity feed queries.
type ActivityFilter struct {
	Actor      ActorRef
	ProjectID  uuid.UUID
	ActorID    uuid.UUID
	Verbs      []string
	ObjectID   string
	Since      *time.Time
	Cursor     *ActivityCursor
	Pagination Pagination
}

// Type implements gocommand.Message for query inputs.
func (ActivityFilter) Type() string {
	return "query.activity.feed"
}

// Validate implements gocommand.Message.
func (filter ActivityFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// ActivityCursor continues a feed after the entry it was taken from.
type ActivityCursor struct {
	OccurredAt time.Time
	ID         uuid.UUID
}

// ActivityPage represents a paginated feed response.
type ActivityPage struct {
	Records    []ActivityRecord
	Total      int
	NextOffset int
	NextCursor *ActivityCursor
	HasMore    bool
}

// ActivityRepository exposes read-side access to activity logs.
type ActivityRepository interface {
	ListActivity(ctx context.Context, filter ActivityFilter) (ActivityPage, error)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = errors.New("go-tableviews: actor reference required")
	// ErrUserIDRequired indicates a user scoped operation was requested without a user.
	ErrUserIDRequired = errors.New("go-tableviews: user id required for user scoped default")
	// ErrProjectIDRequired indicates the project identifier was omitted.
	ErrProjectIDRequired = errors.New("go-tableviews: project id required")
	// ErrViewNameRequired indicates the table/view name was omitted.
	ErrViewNameRequired = errors.New("go-tableviews: view name required")
	// ErrViewIDRequired indicates the view preset identifier was omitted.
	ErrViewIDRequired = errors.New("go-tableviews: view id required")
	// ErrInvalidScope indicates the scope is neither project nor user.
	ErrInvalidScope = errors.New("go-tableviews: scope must be project or user")
	// ErrDefaultViewConflict indicates concurrent writers kept winning the insert race.
	ErrDefaultViewConflict = errors.New("go-tableviews: default view write conflict")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-tableviews: service not ready")
	// ErrMissingDefaultViewRepository occurs when commands or queries lack storage.
	ErrMissingDefaultViewRepository = errors.New("go-tableviews: missing default view repository")
	// ErrMissingActivityRepository occurs when feed queries lack storage.
	ErrMissingActivityRepository = errors.New("go-tableviews: missing activity repository")
	// ErrMissingDefaultViewResolver occurs when queries lack a resolver.
	ErrMissingDefaultViewResolver = errors.New("go-tableviews: missing default view resolver")
)

// IsValidationError reports whether err is one of the input validation
// failures raised before any storage access.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrActorRequired,
		ErrUserIDRequired,
		ErrProjectIDRequired,
		ErrViewNameRequired,
		ErrViewIDRequired,
		ErrInvalidScope,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
