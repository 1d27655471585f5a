package sqlite

import (
	"context"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

// readingSessionColumns must match the scan order in scanReadingSession.
const readingSessionColumns = `id, book_id, user_id, minutes, pages_read, session_date, created_at`

// scanReadingSession scans a sql.Row (or sql.Rows via its Scan method) into a domain.ReadingSession.
func scanReadingSession(scanner interface{ Scan(dest ...any) error }) (*domain.ReadingSession, error) {
	var (
		rs          domain.ReadingSession
		sessionDate string
		createdAt   string
	)

	err := scanner.Scan(
		&rs.ID,
		&rs.BookID,
		&rs.UserID,
		&rs.Minutes,
		&rs.PagesRead,
		&sessionDate,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if rs.SessionDate, err = parseTime(sessionDate); err != nil {
		return nil, err
	}
	if rs.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &rs, nil
}

// CreateReadingSession inserts a new reading session.
// Returns store.ErrAlreadyExists if the session ID already exists.
func (s *Store) CreateReadingSession(ctx context.Context, session *domain.ReadingSession) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO reading_sessions (
			id, book_id, user_id, minutes, pages_read, session_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.BookID,
		session.UserID,
		session.Minutes,
		session.PagesRead,
		formatTime(session.SessionDate),
		formatTime(session.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return store.ErrNotFound
	}
	return err
}

// UpdateReadingSession replaces the values of an existing session.
// Returns store.ErrNotFound if the session does not exist for its book and owner.
func (s *Store) UpdateReadingSession(ctx context.Context, session *domain.ReadingSession) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE reading_sessions SET
			minutes = ?,
			pages_read = ?,
			session_date = ?
		WHERE id = ? AND book_id = ? AND user_id = ?`,
		session.Minutes,
		session.PagesRead,
		formatTime(session.SessionDate),
		session.ID,
		session.BookID,
		session.UserID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetReadingSessionForUser retrieves a session scoped by book and owner.
func (s *Store) GetReadingSessionForUser(ctx context.Context, sessionID, bookID, userID string) (*domain.ReadingSession, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+readingSessionColumns+` FROM reading_sessions
		WHERE id = ? AND book_id = ? AND user_id = ?`,
		sessionID, bookID, userID)

	rs, err := scanReadingSession(row)
	if err != nil {
		return nil, scanNotFound(err)
	}
	return rs, nil
}

// ListReadingSessions returns a book's sessions, newest session date first.
func (s *Store) ListReadingSessions(ctx context.Context, bookID, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.ReadingSession], error) {
	return page(ctx, s.q, params,
		`SELECT COUNT(*) FROM reading_sessions WHERE book_id = ? AND user_id = ?`,
		`SELECT `+readingSessionColumns+` FROM reading_sessions
		WHERE book_id = ? AND user_id = ?
		ORDER BY session_date DESC, id
		LIMIT ? OFFSET ?`,
		[]any{bookID, userID},
		scanReadingSession,
	)
}

// DeleteReadingSession removes a session and reports how many rows went.
func (s *Store) DeleteReadingSession(ctx context.Context, sessionID, userID, bookID string) (int64, error) {
	result, err := s.q.ExecContext(ctx,
		`DELETE FROM reading_sessions WHERE id = ? AND user_id = ? AND book_id = ?`,
		sessionID, userID, bookID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
