package domain

import (
	"time"

	"github.com/pagemark/pagemark-server/internal/errors"
)

// ReadingSession is one logged stretch of reading against a Book.
//
// Sessions are immutable once built. Changing one means building a
// replacement with Replace, which keeps the identity and creation time.
type ReadingSession struct {
	ID          string    `json:"id"`
	BookID      string    `json:"book_id"`
	UserID      string    `json:"user_id"`
	Minutes     int       `json:"minutes"`
	PagesRead   int       `json:"pages_read"`
	SessionDate time.Time `json:"session_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewReadingSession validates the inputs and builds a session for book.
// When several inputs are invalid the first of bookId, minutes, pagesRead,
// sessionDate is reported.
func NewReadingSession(id string, book *Book, minutes, pagesRead int, sessionDate time.Time) (*ReadingSession, error) {
	if book == nil {
		return nil, errors.FieldValidation("bookId", "book is required")
	}
	if err := validateSessionValues(minutes, pagesRead, sessionDate); err != nil {
		return nil, err
	}

	return &ReadingSession{
		ID:          id,
		BookID:      book.ID,
		UserID:      book.UserID,
		Minutes:     minutes,
		PagesRead:   pagesRead,
		SessionDate: sessionDate,
		CreatedAt:   time.Now(),
	}, nil
}

// Replace returns a validated copy of s carrying new values.
func (s *ReadingSession) Replace(minutes, pagesRead int, sessionDate time.Time) (*ReadingSession, error) {
	if err := validateSessionValues(minutes, pagesRead, sessionDate); err != nil {
		return nil, err
	}

	return &ReadingSession{
		ID:          s.ID,
		BookID:      s.BookID,
		UserID:      s.UserID,
		Minutes:     minutes,
		PagesRead:   pagesRead,
		SessionDate: sessionDate,
		CreatedAt:   s.CreatedAt,
	}, nil
}

func validateSessionValues(minutes, pagesRead int, sessionDate time.Time) error {
	if minutes <= 0 {
		return errors.FieldValidation("minutes", "minutes must be greater than zero")
	}
	if pagesRead <= 0 {
		return errors.FieldValidation("pagesRead", "pages read must be greater than zero")
	}
	if sessionDate.IsZero() {
		return errors.FieldValidation("sessionDate", "session date is required")
	}
	return nil
}
