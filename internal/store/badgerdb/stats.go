package badgerdb

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pagemark/pagemark-server/internal/domain"
)

// GetReadingStats walks the user's books, sessions and categories in one
// read transaction and aggregates them.
func (s *Store) GetReadingStats(ctx context.Context, userID string, since time.Time) (*domain.ReadingStats, error) {
	var (
		books      []*domain.Book
		sessions   []*domain.ReadingSession
		categories []*domain.Category
	)
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		if books, err = s.books.ListByIndex(txn, "user", userID); err != nil {
			return err
		}
		if sessions, err = s.sessions.ListByIndex(txn, "user", userID); err != nil {
			return err
		}
		categories, err = s.categories.ListByIndex(txn, "user", userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	stats := &domain.ReadingStats{
		Categories: []domain.CategoryCount{},
		Daily:      []domain.DailyReading{},
	}

	perCategory := make(map[string]int)
	progressSum := 0
	for _, b := range books {
		stats.TotalBooks++
		stats.TotalPagesRead += b.PagesRead
		progressSum += b.Progress()
		switch {
		case b.IsFinished():
			stats.FinishedBooks++
		case b.PagesRead > 0:
			stats.InProgressBooks++
		}
		perCategory[b.CategoryID]++
	}
	if stats.TotalBooks > 0 {
		stats.AverageProgress = progressSum / stats.TotalBooks
	}

	slices.SortFunc(categories, func(a, b *domain.Category) int {
		return strings.Compare(a.Key(), b.Key())
	})
	for _, c := range categories {
		stats.Categories = append(stats.Categories, domain.CategoryCount{
			CategoryID: c.ID,
			Name:       c.Name,
			BookCount:  perCategory[c.ID],
		})
	}

	daily := make(map[time.Time]*domain.DailyReading)
	for _, rs := range sessions {
		stats.SessionCount++
		stats.TotalMinutes += rs.Minutes

		if rs.SessionDate.Before(since) {
			continue
		}
		d := rs.SessionDate.UTC()
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		entry, ok := daily[day]
		if !ok {
			entry = &domain.DailyReading{Date: day}
			daily[day] = entry
		}
		entry.PagesRead += rs.PagesRead
		entry.Minutes += rs.Minutes
	}
	for _, entry := range daily {
		stats.Daily = append(stats.Daily, *entry)
	}
	slices.SortFunc(stats.Daily, func(a, b domain.DailyReading) int {
		return a.Date.Compare(b.Date)
	})

	return stats, nil
}
