package crudsvc

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableviews/command"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/google/uuid"
)

const (
	textCodeValidation       = "DEFAULT_VIEW_INVALID"
	textCodeConflict         = "DEFAULT_VIEW_CONFLICT"
	textCodeForbidden        = "DEFAULT_VIEW_FORBIDDEN"
	textCodeFeatureDisabled  = "DEFAULT_VIEW_FEATURE_DISABLED"
	textCodeInvalidParameter = "INVALID_PARAMETER"
)

func queryUUID(ctx crud.Context, key string) uuid.UUID {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// queryUUIDStrict rejects malformed identifiers instead of ignoring them.
func queryUUIDStrict(ctx crud.Context, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryValidation, "go-tableviews: invalid "+key).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeInvalidParameter)
	}
	return id, nil
}

func queryStringSlice(ctx crud.Context, key string) []string {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func queryInt(ctx crud.Context, key string, def int) int {
	if value := ctx.Query(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return def
}

func queryTime(ctx crud.Context, key string) *time.Time {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &parsed
}

// mapDomainError converts core sentinel errors into go-errors values so
// transports render the right status.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return err
	}
	switch {
	case types.IsValidationError(err):
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeValidation)
	case errors.Is(err, types.ErrUnauthorizedScope):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, err.Error()).
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeForbidden)
	case errors.Is(err, types.ErrDefaultViewConflict):
		return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeConflict)
	case errors.Is(err, command.ErrUserDefaultsDisabled):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, err.Error()).
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeFeatureDisabled)
	default:
		return err
	}
}

func forbidden(message string) error {
	return goerrors.New("go-tableviews: "+message, goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(textCodeForbidden)
}

func internalError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
}
