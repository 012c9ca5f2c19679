package main

import (
	"errors"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
)

// Config holds the CLI configuration. Values come from struct defaults and
// TABLEVIEWS_* environment variables, then persistent flags.
type Config struct {
	Persistence PersistenceConfig `json:"persistence"`
	Cache       CacheConfig       `json:"cache"`
	Features    FeatureConfig     `json:"features"`
}

// PersistenceConfig implements persistence.Config.
type PersistenceConfig struct {
	Debug          bool          `json:"debug" env:"TABLEVIEWS_DB_DEBUG" default:"false"`
	Driver         string        `json:"driver" env:"TABLEVIEWS_DB_DRIVER" default:"sqlite"`
	Server         string        `json:"server" env:"TABLEVIEWS_DB_DSN" default:"file:tableviews.db?cache=shared&_fk=1"`
	PingTimeout    time.Duration `json:"ping_timeout" default:"5s"`
	OtelIdentifier string        `json:"otel_identifier" default:"go-tableviews"`
}

func (c PersistenceConfig) GetDebug() bool                { return c.Debug }
func (c PersistenceConfig) GetDriver() string             { return c.Driver }
func (c PersistenceConfig) GetServer() string             { return c.Server }
func (c PersistenceConfig) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c PersistenceConfig) GetOtelIdentifier() string     { return c.OtelIdentifier }

// CacheConfig toggles the go-repository-cache decorator on the pointer store.
type CacheConfig struct {
	Enabled bool `json:"enabled" env:"TABLEVIEWS_CACHE_ENABLED" default:"false"`
}

// FeatureConfig carries the static feature gate values.
type FeatureConfig struct {
	UserDefaults bool `json:"user_defaults" env:"TABLEVIEWS_USER_DEFAULTS" default:"true"`
}

// GetPersistence returns persistence config.
func (c *Config) GetPersistence() persistence.Config {
	return c.Persistence
}

// Validate implements config.Validable.
func (c *Config) Validate() error {
	if _, err := dialectName(c.Persistence.Driver); err != nil {
		return err
	}
	if strings.TrimSpace(c.Persistence.Server) == "" {
		return errors.New("tableviews: persistence server (dsn) required")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Persistence: PersistenceConfig{
			Driver:         "sqlite",
			Server:         "file:tableviews.db?cache=shared&_fk=1",
			PingTimeout:    5 * time.Second,
			OtelIdentifier: "go-tableviews",
		},
		Features: FeatureConfig{UserDefaults: true},
	}
}
