package crudsvc

import (
	"fmt"

	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableviews/crudguard"
	"github.com/goliatone/go-tableviews/pkg/types"
)

// GuardAdapter captures the subset of crudguard.Adapter we rely on so tests can
// swap in fakes.
type GuardAdapter interface {
	Enforce(in crudguard.GuardInput) (crudguard.GuardResult, error)
}

// ProjectManagerFunc reports whether the actor may manage project scoped
// defaults and other users' personal defaults.
type ProjectManagerFunc func(actor types.ActorRef) bool

type serviceOptions struct {
	logger         types.Logger
	projectManager ProjectManagerFunc
}

// ServiceOption customizes CRUD service behaviour.
type ServiceOption func(*serviceOptions)

// WithLogger wires a logger for service diagnostics.
func WithLogger(logger types.Logger) ServiceOption {
	return func(cfg *serviceOptions) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithProjectManager replaces the role check used for project scoped writes.
func WithProjectManager(fn ProjectManagerFunc) ServiceOption {
	return func(cfg *serviceOptions) {
		if fn != nil {
			cfg.projectManager = fn
		}
	}
}

func applyOptions(opts []ServiceOption) serviceOptions {
	cfg := serviceOptions{
		logger:         types.NopLogger{},
		projectManager: types.ActorRef.CanManageProjectDefaults,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func notSupported(op crud.CrudOperation) error {
	return goerrors.New(
		fmt.Sprintf("go-tableviews: crud operation %s disabled for this resource", op),
		goerrors.CategoryValidation,
	).WithCode(goerrors.CodeBadRequest)
}

// WithCommandService mirrors crud.WithService but gives consumers a semantic
// helper to highlight that the controller delegates to the command/query layer.
func WithCommandService[T any](svc crud.Service[T]) crud.Option[T] {
	return crud.WithService(svc)
}
