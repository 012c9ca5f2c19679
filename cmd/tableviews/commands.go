package main

import (
	"github.com/goliatone/go-tableviews/command"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/query"
	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply migrations and validate the schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.database(cmd.Context(), openOptions{migrate: true, bootstrap: a.flags.bootstrap})
			if err != nil {
				return err
			}
			defer db.Close()
			a.logger.GetLogger("migrate").Info("schema ready", "driver", a.cfg.Persistence.Driver)
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.flags.bootstrap, "bootstrap", false, "also create minimal projects and users tables")
	return cmd
}

func newResolveCommand(a *app) *cobra.Command {
	var viewName, user string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the effective default view for a table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, actor, projectID, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			userID, err := parseOptionalUUID("user", user)
			if err != nil {
				return err
			}
			resolved, err := svc.GetResolvedDefault(cmd.Context(), query.ResolvedDefaultViewInput{
				ProjectID: projectID,
				ViewName:  viewName,
				UserID:    userID,
				Actor:     actor,
			})
			if err != nil {
				return err
			}
			a.printJSON(cmd, map[string]any{"default": resolved})
			return nil
		},
	}
	cmd.Flags().StringVar(&viewName, "view-name", "", "logical table name")
	cmd.Flags().StringVar(&user, "user", "", "user id for personal defaults")
	return cmd
}

func newSetCommand(a *app) *cobra.Command {
	var viewName, viewID, scopeValue, user string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Point a project or personal default at a view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, actor, projectID, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			userID, err := parseOptionalUUID("user", user)
			if err != nil {
				return err
			}
			record, err := svc.SetAsDefault(cmd.Context(), command.SetDefaultViewInput{
				ProjectID: projectID,
				ViewName:  viewName,
				ViewID:    viewID,
				Scope:     types.ParseDefaultViewScope(scopeValue),
				UserID:    userID,
				Actor:     actor,
			})
			if err != nil {
				return err
			}
			a.printJSON(cmd, record)
			return nil
		},
	}
	cmd.Flags().StringVar(&viewName, "view-name", "", "logical table name")
	cmd.Flags().StringVar(&viewID, "view-id", "", "view preset id")
	cmd.Flags().StringVar(&scopeValue, "scope", string(types.DefaultViewScopeProject), "project or user")
	cmd.Flags().StringVar(&user, "user", "", "user id for personal defaults")
	return cmd
}

func newClearCommand(a *app) *cobra.Command {
	var viewName, scopeValue, user string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove a project or personal default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, actor, projectID, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			userID, err := parseOptionalUUID("user", user)
			if err != nil {
				return err
			}
			return svc.ClearDefault(cmd.Context(), command.ClearDefaultViewInput{
				ProjectID: projectID,
				ViewName:  viewName,
				Scope:     types.ParseDefaultViewScope(scopeValue),
				UserID:    userID,
				Actor:     actor,
			})
		},
	}
	cmd.Flags().StringVar(&viewName, "view-name", "", "logical table name")
	cmd.Flags().StringVar(&scopeValue, "scope", string(types.DefaultViewScopeProject), "project or user")
	cmd.Flags().StringVar(&user, "user", "", "user id for personal defaults")
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	var viewID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report where a view is used as a default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, actor, projectID, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			status, err := svc.IsViewDefault(cmd.Context(), query.ViewDefaultStatusInput{
				ViewID:    viewID,
				ProjectID: projectID,
				Actor:     actor,
			})
			if err != nil {
				return err
			}
			a.printJSON(cmd, status)
			return nil
		},
	}
	cmd.Flags().StringVar(&viewID, "view-id", "", "view preset id")
	return cmd
}

func newCleanupCommand(a *app) *cobra.Command {
	var viewID string
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete every default pointing at a removed view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, actor, projectID, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := svc.CleanupOrphanedDefaults(cmd.Context(), command.CleanupDefaultViewsInput{
				ViewID:    viewID,
				ProjectID: projectID,
				Actor:     actor,
			})
			if err != nil {
				return err
			}
			a.printJSON(cmd, map[string]any{"removed": removed})
			return nil
		},
	}
	cmd.Flags().StringVar(&viewID, "view-id", "", "view preset id")
	return cmd
}
