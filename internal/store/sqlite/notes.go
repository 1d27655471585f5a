package sqlite

import (
	"context"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

const noteColumns = `id, book_id, user_id, content, created_at, updated_at`

func scanNote(scanner interface{ Scan(dest ...any) error }) (*domain.Note, error) {
	var (
		n         domain.Note
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&n.ID, &n.BookID, &n.UserID, &n.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNote inserts a new note.
func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO notes (id, book_id, user_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.BookID,
		note.UserID,
		note.Content,
		formatTime(note.CreatedAt),
		formatTime(note.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return store.ErrNotFound
	}
	return err
}

// UpdateNote replaces a note's content.
func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE notes SET content = ?, updated_at = ?
		WHERE id = ? AND book_id = ? AND user_id = ?`,
		note.Content,
		formatTime(note.UpdatedAt),
		note.ID,
		note.BookID,
		note.UserID,
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

// GetNoteForUser retrieves a note scoped by book and owner.
func (s *Store) GetNoteForUser(ctx context.Context, noteID, bookID, userID string) (*domain.Note, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND book_id = ? AND user_id = ?`,
		noteID, bookID, userID)
	n, err := scanNote(row)
	if err != nil {
		return nil, scanNotFound(err)
	}
	return n, nil
}

// ListNotes returns a book's notes, newest first.
func (s *Store) ListNotes(ctx context.Context, bookID, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.Note], error) {
	return page(ctx, s.q, params,
		`SELECT COUNT(*) FROM notes WHERE book_id = ? AND user_id = ?`,
		`SELECT `+noteColumns+` FROM notes
		WHERE book_id = ? AND user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`,
		[]any{bookID, userID},
		scanNote,
	)
}

// DeleteNote removes a note and reports how many rows went.
func (s *Store) DeleteNote(ctx context.Context, noteID, userID, bookID string) (int64, error) {
	result, err := s.q.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ? AND book_id = ?`,
		noteID, userID, bookID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
