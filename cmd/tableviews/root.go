package main

import (
	"context"
	"fmt"
	"strings"

	gconfig "github.com/goliatone/go-config/config"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	tableviews "github.com/goliatone/go-tableviews"
	"github.com/goliatone/go-tableviews/activity"
	"github.com/goliatone/go-tableviews/defaultviews"
	"github.com/goliatone/go-tableviews/pkg/types"
	"github.com/goliatone/go-tableviews/scope"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

type rootFlags struct {
	driver    string
	dsn       string
	verbose   bool
	cache     bool
	project   string
	actor     string
	role      string
	bootstrap bool
}

type app struct {
	flags  *rootFlags
	cfg    *Config
	logger *glog.BaseLogger
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	a := &app{flags: flags}

	root := &cobra.Command{
		Use:           "tableviews",
		Short:         "Manage default table view pointers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.driver, "driver", "", "database driver (sqlite or postgres)")
	pf.StringVar(&flags.dsn, "dsn", "", "database connection string")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable trace logging")
	pf.BoolVar(&flags.cache, "cache", false, "enable the pointer repository cache")
	pf.StringVar(&flags.project, "project", "", "project id")
	pf.StringVar(&flags.actor, "actor", "", "acting user id")
	pf.StringVar(&flags.role, "role", types.ActorRoleProjectAdmin, "acting user role")

	root.AddCommand(
		newMigrateCommand(a),
		newResolveCommand(a),
		newSetCommand(a),
		newClearCommand(a),
		newStatusCommand(a),
		newCleanupCommand(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	if a.flags.verbose {
		a.logger = glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithLevel(glog.Trace),
			glog.WithName("tableviews"),
			glog.WithAddSource(false),
			glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
		)
	} else {
		a.logger = glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithName("tableviews"),
			glog.WithAddSource(false),
			glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
		)
	}

	container := gconfig.New(defaultConfig()).WithLogger(a.logger.GetLogger("config"))
	if err := container.Load(ctx); err != nil {
		return err
	}
	cfg := container.Raw()
	if strings.TrimSpace(a.flags.driver) != "" {
		cfg.Persistence.Driver = a.flags.driver
	}
	if strings.TrimSpace(a.flags.dsn) != "" {
		cfg.Persistence.Server = a.flags.dsn
	}
	if a.flags.cache {
		cfg.Cache.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	if a.flags.verbose {
		a.logger.GetLogger("config").Debug("configuration loaded", "config", print.MaybeHighlightJSON(cfg))
	}
	return nil
}

func (a *app) database(ctx context.Context, opts openOptions) (*bun.DB, error) {
	return openDatabase(ctx, a.cfg.Persistence, opts, a.logger.GetLogger("persistence"))
}

// service wires the repositories behind the project pinned by --project. The
// role policy applies the same rules a host would enforce over HTTP.
func (a *app) service(ctx context.Context) (*tableviews.Service, types.ActorRef, uuid.UUID, error) {
	projectID, err := parseRequiredUUID("project", a.flags.project)
	if err != nil {
		return nil, types.ActorRef{}, uuid.Nil, err
	}
	actorID, err := parseRequiredUUID("actor", a.flags.actor)
	if err != nil {
		return nil, types.ActorRef{}, uuid.Nil, err
	}
	db, err := a.database(ctx, openOptions{})
	if err != nil {
		return nil, types.ActorRef{}, uuid.Nil, err
	}

	repo, err := defaultviews.NewRepository(
		defaultviews.RepositoryConfig{DB: db},
		defaultviews.WithCache(a.cfg.Cache.Enabled),
	)
	if err != nil {
		return nil, types.ActorRef{}, uuid.Nil, err
	}
	sink, err := activity.NewRepository(activity.RepositoryConfig{DB: db, Masker: activity.DefaultMasker()})
	if err != nil {
		return nil, types.ActorRef{}, uuid.Nil, err
	}

	svc := tableviews.New(tableviews.Config{
		DefaultViewRepository: repo,
		ActivitySink:          sink,
		FeatureGate:           newFeatureGate(a.cfg.Features),
		Logger:                &loggerAdapter{l: a.logger.GetLogger("service")},
		ScopeResolver:         scope.FixedProjectResolver(projectID),
		AuthorizationPolicy:   scope.NewRolePolicy(),
	})
	if err := svc.HealthCheck(ctx); err != nil {
		return nil, types.ActorRef{}, uuid.Nil, err
	}
	actor := types.ActorRef{ID: actorID, Type: strings.TrimSpace(a.flags.role)}
	return svc, actor, projectID, nil
}

func (a *app) printJSON(cmd *cobra.Command, value any) {
	fmt.Fprintln(cmd.OutOrStdout(), print.MaybeHighlightJSON(value))
}

func parseRequiredUUID(name, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("tableviews: --%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("tableviews: invalid --%s: %w", name, err)
	}
	return id, nil
}

func parseOptionalUUID(name, raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, nil
	}
	return parseRequiredUUID(name, raw)
}
