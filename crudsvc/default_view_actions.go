package crudsvc

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableviews/defaultviews"
)

type cleanupPayload struct {
	ViewID string `json:"view_id"`
}

// DefaultViewActions returns the resolve, status, and cleanup collection
// actions for the default view controller.
func DefaultViewActions(service *DefaultViewService) []crud.Action[*defaultviews.Record] {
	return []crud.Action[*defaultviews.Record]{
		DefaultViewResolveAction(service),
		DefaultViewStatusAction(service),
		DefaultViewCleanupAction(service),
	}
}

// DefaultViewResolveAction registers GET /default-views/resolve. The response
// carries a null default when neither pointer applies.
func DefaultViewResolveAction(service *DefaultViewService) crud.Action[*defaultviews.Record] {
	return crud.Action[*defaultviews.Record]{
		Name:   "resolve",
		Method: http.MethodGet,
		Target: crud.ActionTargetCollection,
		Path:   "/default-views/resolve",
		Handler: func(ctx crud.ActionContext[*defaultviews.Record]) error {
			if service == nil {
				return internalError("default view service missing")
			}
			resolved, err := service.ResolveDefault(ctx)
			if err != nil {
				return err
			}
			return ctx.Status(http.StatusOK).JSON(map[string]any{"default": resolved})
		},
	}
}

// DefaultViewStatusAction registers GET /default-views/status?view_id=.
func DefaultViewStatusAction(service *DefaultViewService) crud.Action[*defaultviews.Record] {
	return crud.Action[*defaultviews.Record]{
		Name:   "status",
		Method: http.MethodGet,
		Target: crud.ActionTargetCollection,
		Path:   "/default-views/status",
		Handler: func(ctx crud.ActionContext[*defaultviews.Record]) error {
			if service == nil {
				return internalError("default view service missing")
			}
			status, err := service.DefaultStatus(ctx)
			if err != nil {
				return err
			}
			return ctx.Status(http.StatusOK).JSON(map[string]any{
				"is_user_default":    status.IsUserDefault,
				"is_project_default": status.IsProjectDefault,
				"affected_count":     status.AffectedCount,
			})
		},
	}
}

// DefaultViewCleanupAction registers POST /default-views/cleanup, called by
// hosts after deleting a view preset.
func DefaultViewCleanupAction(service *DefaultViewService) crud.Action[*defaultviews.Record] {
	return crud.Action[*defaultviews.Record]{
		Name:   "cleanup",
		Method: http.MethodPost,
		Target: crud.ActionTargetCollection,
		Path:   "/default-views/cleanup",
		Handler: func(ctx crud.ActionContext[*defaultviews.Record]) error {
			if service == nil {
				return internalError("default view service missing")
			}
			var payload cleanupPayload
			if err := ctx.BodyParser(&payload); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid cleanup payload").WithCode(goerrors.CodeBadRequest)
			}
			viewID := strings.TrimSpace(payload.ViewID)
			if viewID == "" {
				viewID = strings.TrimSpace(ctx.Query("view_id"))
			}
			removed, err := service.CleanupDefaults(ctx, viewID)
			if err != nil {
				return err
			}
			return ctx.Status(http.StatusOK).JSON(map[string]any{"removed": removed})
		},
	}
}
