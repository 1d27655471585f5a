package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagemark/pagemark-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	register(s, huma.Operation{
		OperationID: "getReadingStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Get reading stats",
		Description: "Summarizes the user's catalog with daily totals for the last 7 days",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStats)
}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body *domain.ReadingStats
}

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: stats}, nil
}
