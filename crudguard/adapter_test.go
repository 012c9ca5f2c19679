package crudguard

import (
	"context"
	"testing"
	"time"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
)

func TestAdapterEnforceRunsGuard(t *testing.T) {
	guard := &stubGuard{
		result:    types.ScopeFilter{ProjectID: uuid.New()},
		useResult: true,
	}
	adapter := newTestAdapter(t, guard)

	actorCtx := &auth.ActorContext{
		ActorID:  uuid.NewString(),
		Role:     "admin",
		TenantID: uuid.NewString(),
	}
	ctx := newStubCrudContext(auth.WithActorContext(context.Background(), actorCtx))
	result, err := adapter.Enforce(GuardInput{
		Context:   ctx,
		Operation: crud.OpList,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !guard.called {
		t.Fatal("expected guard to be called")
	}
	if guard.lastAction != types.PolicyActionDefaultViewsRead {
		t.Fatalf("expected action %s, got %s", types.PolicyActionDefaultViewsRead, guard.lastAction)
	}
	if result.Scope.ProjectID != guard.result.ProjectID {
		t.Fatalf("expected resolved scope to match guard result")
	}
}

func TestAdapterExplicitActionOverridesPolicyMap(t *testing.T) {
	guard := &stubGuard{}
	adapter := newTestAdapter(t, guard)
	actorCtx := &auth.ActorContext{ActorID: uuid.NewString(), Role: "project_admin", TenantID: uuid.NewString()}
	ctx := newStubCrudContext(auth.WithActorContext(context.Background(), actorCtx))

	result, err := adapter.Enforce(GuardInput{
		Context:   ctx,
		Operation: crud.OpDelete,
		Action:    types.PolicyActionDefaultViewsCleanup,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if guard.lastAction != types.PolicyActionDefaultViewsCleanup {
		t.Fatalf("expected cleanup action, got %s", guard.lastAction)
	}
	if result.Action != types.PolicyActionDefaultViewsCleanup {
		t.Fatalf("expected result to report cleanup action, got %s", result.Action)
	}
}

func TestAdapterRecordScopePinsProject(t *testing.T) {
	guard := &stubGuard{}
	adapter := newTestAdapter(t, guard)
	actorCtx := &auth.ActorContext{ActorID: uuid.NewString(), Role: "member", TenantID: uuid.NewString()}
	ctx := newStubCrudContext(auth.WithActorContext(context.Background(), actorCtx))
	ctx.queries[ProjectQueryKey] = uuid.NewString()

	recordProject := uuid.New()
	owner := uuid.New()
	_, err := adapter.Enforce(GuardInput{
		Context:   ctx,
		Operation: crud.OpUpdate,
		Scope:     types.ScopeFilter{ProjectID: recordProject},
		TargetID:  owner,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if guard.lastRequested.ProjectID != recordProject {
		t.Fatalf("expected record project %s, got %s", recordProject, guard.lastRequested.ProjectID)
	}
	if guard.lastTarget != owner {
		t.Fatalf("expected target %s, got %s", owner, guard.lastTarget)
	}
}

func TestAdapterMissingPolicyFailsBeforeGuard(t *testing.T) {
	guard := &stubGuard{}
	adapter, err := NewAdapter(Config{
		Guard:     guard,
		PolicyMap: map[crud.CrudOperation]types.PolicyAction{crud.OpList: types.PolicyActionDefaultViewsRead},
	})
	if err != nil {
		t.Fatalf("unexpected adapter construction error: %v", err)
	}
	actorCtx := &auth.ActorContext{ActorID: uuid.NewString(), Role: "member"}
	ctx := newStubCrudContext(auth.WithActorContext(context.Background(), actorCtx))

	_, err = adapter.Enforce(GuardInput{Context: ctx, Operation: crud.OpCreate})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors.Error, got %T", err)
	}
	if richErr.TextCode != textCodeMissingPolicy {
		t.Fatalf("expected text code %s, got %s", textCodeMissingPolicy, richErr.TextCode)
	}
	if guard.called {
		t.Fatal("guard must not run without a policy action")
	}
}

func TestAdapterMissingActorReturnsError(t *testing.T) {
	guard := &stubGuard{}
	adapter := newTestAdapter(t, guard)
	_, err := adapter.Enforce(GuardInput{
		Context:   newStubCrudContext(context.Background()),
		Operation: crud.OpRead,
	})
	if err == nil {
		t.Fatal("expected error when actor context missing")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors.Error, got %T", err)
	}
	if richErr.TextCode != "ACTOR_CONTEXT_MISSING" {
		t.Fatalf("expected text code ACTOR_CONTEXT_MISSING, got %s", richErr.TextCode)
	}
}

func TestAdapterFallsBackToClaims(t *testing.T) {
	guard := &stubGuard{}
	adapter := newTestAdapter(t, guard)

	actorID := uuid.New()
	claims := &testClaims{
		subject:  actorID.String(),
		uid:      actorID.String(),
		role:     "user",
		metadata: map[string]any{"tenant_id": uuid.New().String()},
	}
	ctx := auth.WithClaimsContext(context.Background(), claims)

	_, err := adapter.Enforce(GuardInput{
		Context:   newStubCrudContext(ctx),
		Operation: crud.OpRead,
	})
	if err != nil {
		t.Fatalf("expected fallback to claims, got %v", err)
	}
	if !guard.called {
		t.Fatal("expected guard to run")
	}
}

func TestAdapterWrapsUnauthorizedScope(t *testing.T) {
	guard := &stubGuard{
		err: types.ErrUnauthorizedScope,
	}
	adapter := newTestAdapter(t, guard)
	actorCtx := &auth.ActorContext{ActorID: uuid.NewString(), Role: "admin"}
	ctx := newStubCrudContext(auth.WithActorContext(context.Background(), actorCtx))

	_, err := adapter.Enforce(GuardInput{
		Context:   ctx,
		Operation: crud.OpDelete,
	})
	if err == nil {
		t.Fatal("expected scope enforcement failure")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors.Error, got %T", err)
	}
	if richErr.TextCode != textCodeScopeDenied {
		t.Fatalf("expected text code %s, got %s", textCodeScopeDenied, richErr.TextCode)
	}
}

func TestAdapterWriteOperationsMapToWriteAction(t *testing.T) {
	guard := &stubGuard{}
	adapter := newTestAdapter(t, guard)
	actorCtx := &auth.ActorContext{ActorID: uuid.NewString(), Role: "member"}
	ctx := newStubCrudContext(auth.WithActorContext(context.Background(), actorCtx))

	for _, op := range []crud.CrudOperation{crud.OpCreate, crud.OpUpdate, crud.OpDelete} {
		if _, err := adapter.Enforce(GuardInput{Context: ctx, Operation: op}); err != nil {
			t.Fatalf("unexpected error for %s: %v", op, err)
		}
		if guard.lastAction != types.PolicyActionDefaultViewsWrite {
			t.Fatalf("expected write action for %s, got %s", op, guard.lastAction)
		}
	}
}

func TestAdapterProjectQueryOverridesActorProject(t *testing.T) {
	guard := &stubGuard{}
	adapter := newTestAdapter(t, guard)
	actorCtx := &auth.ActorContext{
		ActorID:  uuid.NewString(),
		Role:     "member",
		TenantID: uuid.NewString(),
	}
	projectID := uuid.New()
	ctx := newStubCrudContext(auth.WithActorContext(context.Background(), actorCtx))
	ctx.queries[ProjectQueryKey] = projectID.String()

	result, err := adapter.Enforce(GuardInput{Context: ctx, Operation: crud.OpList})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if guard.lastRequested.ProjectID != projectID || result.Scope.ProjectID != projectID {
		t.Fatalf("expected project %s, got %s", projectID, guard.lastRequested.ProjectID)
	}
}

func TestAdapterRejectsMalformedProject(t *testing.T) {
	guard := &stubGuard{}
	adapter := newTestAdapter(t, guard)
	actorCtx := &auth.ActorContext{ActorID: uuid.NewString(), Role: "member"}
	ctx := newStubCrudContext(auth.WithActorContext(context.Background(), actorCtx))
	ctx.queries[ProjectQueryKey] = "not-a-uuid"

	_, err := adapter.Enforce(GuardInput{Context: ctx, Operation: crud.OpList})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors.Error, got %T", err)
	}
	if richErr.TextCode != textCodeInvalidProject {
		t.Fatalf("expected text code %s, got %s", textCodeInvalidProject, richErr.TextCode)
	}
	if guard.called {
		t.Fatal("guard must not run for malformed scope")
	}
}

// helpers

type stubGuard struct {
	result        types.ScopeFilter
	err           error
	called        bool
	lastAction    types.PolicyAction
	lastRequested types.ScopeFilter
	lastTarget    uuid.UUID
	useResult     bool
}

func (s *stubGuard) Enforce(ctx context.Context, actor types.ActorRef, requested types.ScopeFilter, action types.PolicyAction, target uuid.UUID) (types.ScopeFilter, error) {
	s.called = true
	s.lastAction = action
	s.lastRequested = requested
	s.lastTarget = target
	if s.err != nil {
		return types.ScopeFilter{}, s.err
	}
	if s.useResult {
		return s.result, nil
	}
	return requested, nil
}

func newTestAdapter(t *testing.T, guard scope.Guard) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(Config{
		Guard:          guard,
		Logger:         types.NopLogger{},
		PolicyMap:      DefaultViewPolicyMap(),
		ScopeExtractor: ProjectScopeExtractor,
	})
	if err != nil {
		t.Fatalf("unexpected adapter construction error: %v", err)
	}
	return adapter
}

type stubCrudContext struct {
	ctx     context.Context
	status  int
	body    []byte
	queries map[string]string
}

func newStubCrudContext(ctx context.Context) *stubCrudContext {
	return &stubCrudContext{
		ctx:     ctx,
		queries: map[string]string{},
	}
}

func (s *stubCrudContext) UserContext() context.Context {
	return s.ctx
}

func (s *stubCrudContext) Params(key string, defaultValue ...string) string {
	return ""
}

func (s *stubCrudContext) BodyParser(out any) error {
	return nil
}

func (s *stubCrudContext) Query(key string, defaultValue ...string) string {
	if v, ok := s.queries[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (s *stubCrudContext) QueryValues(key string) []string {
	if v, ok := s.queries[key]; ok {
		return []string{v}
	}
	return nil
}

func (s *stubCrudContext) QueryInt(key string, defaultValue ...int) int {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

func (s *stubCrudContext) Queries() map[string]string {
	return s.queries
}

func (s *stubCrudContext) Body() []byte {
	return s.body
}

func (s *stubCrudContext) Status(status int) crud.Response {
	s.status = status
	return s
}

func (s *stubCrudContext) JSON(data any, ctype ...string) error {
	return nil
}

func (s *stubCrudContext) SendStatus(status int) error {
	s.status = status
	return nil
}

type testClaims struct {
	subject  string
	uid      string
	role     string
	metadata map[string]any
	res      map[string]string
}

func (t *testClaims) Subject() string                  { return t.subject }
func (t *testClaims) UserID() string                   { return t.uid }
func (t *testClaims) Role() string                     { return t.role }
func (t *testClaims) CanRead(string) bool              { return true }
func (t *testClaims) CanEdit(string) bool              { return true }
func (t *testClaims) CanCreate(string) bool            { return true }
func (t *testClaims) CanDelete(string) bool            { return true }
func (t *testClaims) HasRole(role string) bool         { return t.role == role }
func (t *testClaims) IsAtLeast(string) bool            { return true }
func (t *testClaims) Expires() time.Time               { return time.Time{} }
func (t *testClaims) IssuedAt() time.Time              { return time.Time{} }
func (t *testClaims) ResourceRoles() map[string]string { return t.res }
func (t *testClaims) ClaimsMetadata() map[string]any   { return t.metadata }
