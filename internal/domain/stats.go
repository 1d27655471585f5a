package domain

import "time"

// ReadingStats summarizes a user's reading across their whole catalog.
type ReadingStats struct {
	TotalBooks      int `json:"total_books"`
	FinishedBooks   int `json:"finished_books"`
	InProgressBooks int `json:"in_progress_books"`
	TotalPagesRead  int `json:"total_pages_read"`
	TotalMinutes    int `json:"total_minutes"`
	SessionCount    int `json:"session_count"`

	// AverageProgress is the mean Progress over all books, truncated.
	AverageProgress int `json:"average_progress"`

	Categories []CategoryCount `json:"categories"`
	Daily      []DailyReading  `json:"daily"`
}

// CategoryCount is the number of books filed under one category.
type CategoryCount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	BookCount  int    `json:"book_count"`
}

// DailyReading totals the sessions logged on one calendar day (UTC).
type DailyReading struct {
	Date      time.Time `json:"date"`
	PagesRead int       `json:"pages_read"`
	Minutes   int       `json:"minutes"`
}
