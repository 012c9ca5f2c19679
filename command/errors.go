package command

import (
	"errors"

	"github.com/goliatone/go-tableviews/pkg/types"
)

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrUserIDRequired occurs when a user scoped command omits the user.
	ErrUserIDRequired = types.ErrUserIDRequired
	// ErrProjectIDRequired occurs when a command omits the project.
	ErrProjectIDRequired = types.ErrProjectIDRequired
	// ErrViewNameRequired occurs when a command omits the table/view name.
	ErrViewNameRequired = types.ErrViewNameRequired
	// ErrViewIDRequired occurs when a command omits the view preset id.
	ErrViewIDRequired = types.ErrViewIDRequired
	// ErrInvalidScope occurs when the scope is neither project nor user.
	ErrInvalidScope = types.ErrInvalidScope
	// ErrUserDefaultsDisabled indicates personal defaults are disabled via feature gate.
	ErrUserDefaultsDisabled = errors.New("go-tableviews: personal default views disabled")
)
