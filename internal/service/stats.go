package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

// statsWindowDays is the number of calendar days covered by daily totals,
// today included.
const statsWindowDays = 7

// StatsService computes reading statistics.
type StatsService struct {
	store  store.StatsStore
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(st store.StatsStore, logger *slog.Logger) *StatsService {
	return &StatsService{store: st, logger: logger, now: time.Now}
}

// GetStats summarizes the user's reading. Daily holds exactly one entry per
// day of the window, oldest first, with zeros on days without sessions.
func (s *StatsService) GetStats(ctx context.Context, userID string) (*domain.ReadingStats, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(statsWindowDays - 1))

	stats, err := s.store.GetReadingStats(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("get reading stats: %w", err)
	}

	stats.Daily = fillDays(stats.Daily, since, statsWindowDays)
	return stats, nil
}

func fillDays(logged []domain.DailyReading, since time.Time, days int) []domain.DailyReading {
	byDay := make(map[string]domain.DailyReading, len(logged))
	for _, d := range logged {
		byDay[d.Date.UTC().Format(time.DateOnly)] = d
	}

	out := make([]domain.DailyReading, days)
	for i := range out {
		day := since.AddDate(0, 0, i)
		d, ok := byDay[day.Format(time.DateOnly)]
		if !ok {
			d = domain.DailyReading{}
		}
		d.Date = day
		out[i] = d
	}
	return out
}
