// Package di provides dependency injection configuration for the Pagemark server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pagemark/pagemark-server/internal/auth"
	"github.com/pagemark/pagemark-server/internal/config"
	"github.com/pagemark/pagemark-server/internal/di/providers"
	"github.com/pagemark/pagemark-server/internal/logger"
	"github.com/pagemark/pagemark-server/internal/metrics"
	"github.com/pagemark/pagemark-server/internal/service"
	"github.com/pagemark/pagemark-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideReadingSessionService)
	do.Provide(injector, providers.ProvideNoteService)
	do.Provide(injector, providers.ProvideStatsService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the HTTP server is listening
// in the background. Provider failures are returned instead of panicking.
func Bootstrap(injector *do.RootScope) error {
	// Config and logger first so later failures can be logged.
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}

	steps := []func() error{
		invoke[*metrics.Metrics](injector),
		invoke[*validation.Validator](injector),
		invoke[providers.AuthKey](injector),
		invoke[*providers.StoreHandle](injector),
		invoke[*providers.SearchIndexHandle](injector),
		invoke[*auth.TokenService](injector),

		// Business services
		invoke[*service.AuthService](injector),
		invoke[*service.CategoryService](injector),
		invoke[*service.BookService](injector),
		invoke[*service.ReadingSessionService](injector),
		invoke[*service.NoteService](injector),
		invoke[*service.StatsService](injector),
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	// Repopulate the search index before traffic arrives.
	providers.TriggerSearchReindexIfNeeded(injector)

	// Server
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}

func invoke[T any](injector do.Injector) func() error {
	return func() error {
		_, err := do.Invoke[T](injector)
		return err
	}
}
