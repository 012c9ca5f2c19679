package tableviews

import "github.com/goliatone/go-tableviews/service"

// Re-export the service package entry point so consumers can do
// `tableviews.New(...)` without importing internal wiring helpers.
type (
	Service             = service.Service
	Config              = service.Config
	Commands            = service.Commands
	Queries             = service.Queries
	DefaultViewResolver = service.DefaultViewResolver
)

// New constructs the go-tableviews runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}
