package api

import (
	"github.com/pagemark/pagemark-server/internal/metrics"
	"github.com/pagemark/pagemark-server/internal/service"
)

// DocumentCounter reports the size of the search index.
type DocumentCounter interface {
	DocumentCount() (uint64, error)
}

// Services groups all business logic services used by the API server.
type Services struct {
	Auth           *service.AuthService
	Category       *service.CategoryService
	Book           *service.BookService
	ReadingSession *service.ReadingSessionService
	Note           *service.NoteService
	Stats          *service.StatsService

	Search  DocumentCounter  // Optional; reported by /health
	Metrics *metrics.Metrics // Optional; serves /metrics
}
