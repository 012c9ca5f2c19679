package main

import (
	"context"
	"io/fs"
	"testing"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-tableviews/command"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Persistence.Driver = "pgx"
	require.NoError(t, cfg.Validate())

	cfg.Persistence.Driver = "mysql"
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Persistence.Server = "  "
	require.Error(t, cfg.Validate())
}

func TestFeatureGateUsesConfiguredDefaults(t *testing.T) {
	ctx := context.Background()
	chain := featuregate.WithScopeChain(featuregate.ScopeChain{
		{Kind: featuregate.ScopeUser, ID: uuid.NewString()},
		{Kind: featuregate.ScopeSystem},
	})

	disabled := newFeatureGate(FeatureConfig{UserDefaults: false})
	enabled, err := disabled.Enabled(ctx, command.FeatureUserDefaults, chain)
	require.NoError(t, err)
	require.False(t, enabled)

	on := newFeatureGate(FeatureConfig{UserDefaults: true})
	enabled, err = on.Enabled(ctx, command.FeatureUserDefaults, chain)
	require.NoError(t, err)
	require.True(t, enabled)

	enabled, err = on.Enabled(ctx, "views.unknown", chain)
	require.NoError(t, err)
	require.False(t, enabled, "keys without a default fall back to disabled")
}

func TestParseUUIDFlags(t *testing.T) {
	_, err := parseRequiredUUID("project", "")
	require.Error(t, err)

	_, err = parseRequiredUUID("project", "nope")
	require.Error(t, err)

	id := uuid.New()
	parsed, err := parseRequiredUUID("project", " "+id.String()+" ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	parsed, err = parseOptionalUUID("user", "")
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, parsed)
}

func TestMigrationSourcesOrderBootstrapFirst(t *testing.T) {
	withoutBootstrap, err := migrationSources(false)
	require.NoError(t, err)

	withBootstrap, err := migrationSources(true)
	require.NoError(t, err)
	require.Len(t, withBootstrap, len(withoutBootstrap)+1)

	entries, err := readDirNames(withBootstrap[0])
	require.NoError(t, err)
	require.Contains(t, entries, "00001_projects_users.up.sql")
}

func TestSchemaChecksIncludeHostTables(t *testing.T) {
	tables := func(withBootstrap bool) []string {
		var out []string
		for _, check := range schemaChecks(withBootstrap) {
			out = append(out, check.Table)
		}
		return out
	}
	require.NotContains(t, tables(false), "projects")
	require.Contains(t, tables(true), "projects")
	require.Contains(t, tables(true), "default_views")
}

func readDirNames(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}
