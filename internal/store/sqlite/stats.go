package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/pagemark/pagemark-server/internal/domain"
)

// GetReadingStats computes a user's reading totals in a handful of aggregate queries.
func (s *Store) GetReadingStats(ctx context.Context, userID string, since time.Time) (*domain.ReadingStats, error) {
	stats := &domain.ReadingStats{
		Categories: []domain.CategoryCount{},
		Daily:      []domain.DailyReading{},
	}

	var progressSum int
	err := s.q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN pages_read = total_pages THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN pages_read > 0 AND pages_read < total_pages THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(pages_read), 0),
			COALESCE(SUM(pages_read * 100 / total_pages), 0)
		FROM books WHERE user_id = ?`, userID,
	).Scan(
		&stats.TotalBooks,
		&stats.FinishedBooks,
		&stats.InProgressBooks,
		&stats.TotalPagesRead,
		&progressSum,
	)
	if err != nil {
		return nil, fmt.Errorf("book totals: %w", err)
	}
	if stats.TotalBooks > 0 {
		stats.AverageProgress = progressSum / stats.TotalBooks
	}

	err = s.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(minutes), 0)
		FROM reading_sessions WHERE user_id = ?`, userID,
	).Scan(&stats.SessionCount, &stats.TotalMinutes)
	if err != nil {
		return nil, fmt.Errorf("session totals: %w", err)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT c.id, c.name, COUNT(b.id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id, c.name
		ORDER BY c.name_key`, userID)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.CategoryID, &cc.Name, &cc.BookCount); err != nil {
			return nil, err
		}
		stats.Categories = append(stats.Categories, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	daily, err := s.q.QueryContext(ctx, `
		SELECT substr(session_date, 1, 10) AS day, SUM(pages_read), SUM(minutes)
		FROM reading_sessions
		WHERE user_id = ? AND session_date >= ?
		GROUP BY day
		ORDER BY day`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer daily.Close()
	for daily.Next() {
		var (
			day string
			dr  domain.DailyReading
		)
		if err := daily.Scan(&day, &dr.PagesRead, &dr.Minutes); err != nil {
			return nil, err
		}
		if dr.Date, err = time.Parse(time.DateOnly, day); err != nil {
			return nil, err
		}
		stats.Daily = append(stats.Daily, dr)
	}
	return stats, daily.Err()
}
