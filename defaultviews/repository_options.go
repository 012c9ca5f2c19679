package defaultviews

import "github.com/goliatone/go-repository-cache/cache"

// DefaultMaxUpsertAttempts bounds how often a lost insert race is retried as
// an update before the conflict is surfaced.
const DefaultMaxUpsertAttempts = 3

// RepositoryOption configures default view repository construction.
type RepositoryOption func(*RepositoryOptions)

// RepositoryOptions captures optional behavior for default view persistence.
type RepositoryOptions struct {
	CacheEnabled      bool
	CacheConfig       *cache.Config
	MaxUpsertAttempts int
}

// WithCache toggles the repository cache decorator.
func WithCache(enabled bool) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheEnabled = enabled
	}
}

// WithCacheConfig supplies the cache configuration to use when caching is enabled.
func WithCacheConfig(cfg cache.Config) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheConfig = &cfg
	}
}

// WithMaxUpsertAttempts overrides DefaultMaxUpsertAttempts. Values below one
// are ignored.
func WithMaxUpsertAttempts(attempts int) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil || attempts < 1 {
			return
		}
		opts.MaxUpsertAttempts = attempts
	}
}

func applyRepositoryOptions(options []RepositoryOption) RepositoryOptions {
	opts := RepositoryOptions{
		MaxUpsertAttempts: DefaultMaxUpsertAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return opts
}
