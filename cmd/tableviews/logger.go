package main

import (
	"github.com/goliatone/go-featuregate/adapters/configadapter"
	"github.com/goliatone/go-featuregate/resolver"
	"github.com/goliatone/go-logger/glog"
)

// loggerAdapter adapts glog.Logger to types.Logger.
type loggerAdapter struct {
	l glog.Logger
}

func (a *loggerAdapter) Debug(msg string, args ...any) {
	a.l.Debug(msg, args...)
}

func (a *loggerAdapter) Info(msg string, args ...any) {
	a.l.Info(msg, args...)
}

func (a *loggerAdapter) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"error", err}, args...)
	}
	a.l.Error(msg, args...)
}

// newFeatureGate resolves feature checks against the loaded configuration.
// Keys are nested by their dotted path, so "views.user_defaults" lives under
// the "views" map.
func newFeatureGate(cfg FeatureConfig) *resolver.Gate {
	defaults := configadapter.NewDefaults(map[string]any{
		"views": map[string]any{
			"user_defaults": cfg.UserDefaults,
		},
	})
	return resolver.New(resolver.WithDefaults(defaults))
}
