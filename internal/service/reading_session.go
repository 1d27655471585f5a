package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagemark/pagemark-server/internal/domain"
	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/id"
	"github.com/pagemark/pagemark-server/internal/metrics"
	"github.com/pagemark/pagemark-server/internal/store"
)

// Operation labels recorded in metrics.
const (
	opCreateSession = "create_session"
	opUpdateSession = "update_session"
	opDeleteSession = "delete_session"
)

// CreateSessionRequest logs a new reading session against a book.
type CreateSessionRequest struct {
	BookID    string
	UserID    string
	Minutes   int
	PagesRead int

	// SessionDate defaults to now when zero.
	SessionDate time.Time
}

// UpdateSessionRequest replaces the values of an existing session.
type UpdateSessionRequest struct {
	BookID    string
	UserID    string
	SessionID string
	Minutes   int
	PagesRead int

	// SessionDate defaults to now when zero.
	SessionDate time.Time
}

// SessionResult is a persisted session together with the book totals it
// produced.
type SessionResult struct {
	ID          string    `json:"id"`
	BookID      string    `json:"book_id"`
	Minutes     int       `json:"minutes"`
	PagesRead   int       `json:"pages_read"`
	SessionDate time.Time `json:"session_date"`
	CreatedAt   time.Time `json:"created_at"`

	BookPagesRead int  `json:"book_pages_read"`
	Progress      int  `json:"progress"`
	Finished      bool `json:"finished"`
}

func newSessionResult(session *domain.ReadingSession, book *domain.Book) *SessionResult {
	return &SessionResult{
		ID:            session.ID,
		BookID:        book.ID,
		Minutes:       session.Minutes,
		PagesRead:     session.PagesRead,
		SessionDate:   session.SessionDate,
		CreatedAt:     session.CreatedAt,
		BookPagesRead: book.PagesRead,
		Progress:      book.Progress(),
		Finished:      book.IsFinished(),
	}
}

// ReadingSessionService keeps each book's PagesRead equal to the sum of its
// sessions. Every mutation loads the book and session, applies the change to
// the book aggregate and persists both in one unit of work.
type ReadingSessionService struct {
	store   store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewReadingSessionService creates a new reading session service.
func NewReadingSessionService(st store.Store, m *metrics.Metrics, logger *slog.Logger) *ReadingSessionService {
	return &ReadingSessionService{
		store:   st,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *ReadingSessionService) sessionDate(requested time.Time) time.Time {
	if requested.IsZero() {
		return s.now()
	}
	return requested
}

// CreateSession logs a session and adds its pages to the book.
func (s *ReadingSessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (result *SessionResult, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opCreateSession, start, err) }()

	sessionID, err := id.Generate(id.PrefixReadingSession)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		book, err := tx.GetBookForUser(ctx, req.BookID, req.UserID)
		if err != nil {
			return storeError(err, resourceBook, "bookId")
		}

		session, err := domain.NewReadingSession(sessionID, book, req.Minutes, req.PagesRead, s.sessionDate(req.SessionDate))
		if err != nil {
			return err
		}

		if err := book.AddPagesRead(session.PagesRead); err != nil {
			return err
		}
		if err := tx.UpdateBook(ctx, book); err != nil {
			return storeError(err, resourceBook, "bookId")
		}
		if err := tx.CreateReadingSession(ctx, session); err != nil {
			return storeError(err, resourceReadingSession, "sessionId")
		}

		result = newSessionResult(session, book)
		return nil
	})
	if err != nil {
		s.logger.Debug("create session rejected",
			"user_id", req.UserID,
			"book_id", req.BookID,
			"error", err)
		return nil, txError(err)
	}

	s.metrics.AddPagesRead(result.PagesRead)
	s.logger.Info("reading session created",
		"session_id", result.ID,
		"user_id", req.UserID,
		"book_id", req.BookID,
		"pages_read", result.PagesRead,
		"book_pages_read", result.BookPagesRead)

	return result, nil
}

// UpdateSession replaces a session's values and moves the book's PagesRead
// by the difference. The replacement is validated before the book changes,
// and nothing is persisted unless every step succeeds.
func (s *ReadingSessionService) UpdateSession(ctx context.Context, req UpdateSessionRequest) (result *SessionResult, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opUpdateSession, start, err) }()

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		book, err := tx.GetBookForUser(ctx, req.BookID, req.UserID)
		if err != nil {
			return storeError(err, resourceBook, "bookId")
		}

		old, err := tx.GetReadingSessionForUser(ctx, req.SessionID, req.BookID, req.UserID)
		if err != nil {
			return storeError(err, resourceReadingSession, "sessionId")
		}

		updated, err := old.Replace(req.Minutes, req.PagesRead, s.sessionDate(req.SessionDate))
		if err != nil {
			return err
		}

		if err := book.ReplacePagesRead(old.PagesRead, updated.PagesRead); err != nil {
			return err
		}
		if err := tx.UpdateBook(ctx, book); err != nil {
			return storeError(err, resourceBook, "bookId")
		}
		if err := tx.UpdateReadingSession(ctx, updated); err != nil {
			return storeError(err, resourceReadingSession, "sessionId")
		}

		result = newSessionResult(updated, book)
		return nil
	})
	if err != nil {
		s.logger.Debug("update session rejected",
			"user_id", req.UserID,
			"book_id", req.BookID,
			"session_id", req.SessionID,
			"error", err)
		return nil, txError(err)
	}

	s.logger.Info("reading session updated",
		"session_id", result.ID,
		"user_id", req.UserID,
		"book_id", req.BookID,
		"pages_read", result.PagesRead,
		"book_pages_read", result.BookPagesRead)

	return result, nil
}

// DeleteSession removes a session and takes its pages back from the book.
// If the session disappears between lookup and delete the book is left
// untouched and a concurrency conflict is returned.
func (s *ReadingSessionService) DeleteSession(ctx context.Context, bookID, userID, sessionID string) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(opDeleteSession, start, err) }()

	var pagesRead int
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		book, err := tx.GetBookForUser(ctx, bookID, userID)
		if err != nil {
			return storeError(err, resourceBook, "bookId")
		}

		session, err := tx.GetReadingSessionForUser(ctx, sessionID, bookID, userID)
		if err != nil {
			return storeError(err, resourceReadingSession, "sessionId")
		}

		affected, err := tx.DeleteReadingSession(ctx, sessionID, userID, bookID)
		if err != nil {
			return storeError(err, resourceReadingSession, "sessionId")
		}
		if affected == 0 {
			return domainerrors.ConcurrencyConflict("reading session was removed by a concurrent request")
		}

		if err := book.RemovePagesRead(session.PagesRead); err != nil {
			return err
		}
		if err := tx.UpdateBook(ctx, book); err != nil {
			return storeError(err, resourceBook, "bookId")
		}

		pagesRead = book.PagesRead
		return nil
	})
	if err != nil {
		s.logger.Debug("delete session rejected",
			"user_id", userID,
			"book_id", bookID,
			"session_id", sessionID,
			"error", err)
		return txError(err)
	}

	s.logger.Info("reading session deleted",
		"session_id", sessionID,
		"user_id", userID,
		"book_id", bookID,
		"book_pages_read", pagesRead)

	return nil
}

// GetSession returns one of the caller's sessions.
func (s *ReadingSessionService) GetSession(ctx context.Context, bookID, userID, sessionID string) (*domain.ReadingSession, error) {
	if _, err := s.store.GetBookForUser(ctx, bookID, userID); err != nil {
		return nil, storeError(err, resourceBook, "bookId")
	}

	session, err := s.store.GetReadingSessionForUser(ctx, sessionID, bookID, userID)
	if err != nil {
		return nil, storeError(err, resourceReadingSession, "sessionId")
	}
	return session, nil
}

// ListSessions returns a page of the book's sessions, newest session date first.
func (s *ReadingSessionService) ListSessions(ctx context.Context, bookID, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.ReadingSession], error) {
	if err := paginationError(params); err != nil {
		return nil, err
	}
	if _, err := s.store.GetBookForUser(ctx, bookID, userID); err != nil {
		return nil, storeError(err, resourceBook, "bookId")
	}

	page, err := s.store.ListReadingSessions(ctx, bookID, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list reading sessions: %w", err)
	}
	return page, nil
}
