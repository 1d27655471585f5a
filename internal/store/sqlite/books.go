package sqlite

import (
	"context"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, user_id, category_id, title, author,
	total_pages, pages_read, version, created_at, updated_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b         domain.Book
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.UserID,
		&b.CategoryID,
		&b.Title,
		&b.Author,
		&b.TotalPages,
		&b.PagesRead,
		&b.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a new book at version 1.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if book.Version == 0 {
		book.Version = 1
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO books (
			id, user_id, category_id, title, author,
			total_pages, pages_read, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.UserID,
		book.CategoryID,
		book.Title,
		book.Author,
		book.TotalPages,
		book.PagesRead,
		book.Version,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return store.ErrNotFound
	}
	return err
}

// UpdateBook writes the mutable fields of book guarded by its version.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE books SET
			category_id = ?,
			title = ?,
			author = ?,
			pages_read = ?,
			updated_at = ?,
			version = version + 1
		WHERE id = ? AND user_id = ? AND version = ?`,
		book.CategoryID,
		book.Title,
		book.Author,
		book.PagesRead,
		formatTime(book.UpdatedAt),
		book.ID,
		book.UserID,
		book.Version,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from a stale version.
		var exists int
		err := s.q.QueryRowContext(ctx,
			`SELECT 1 FROM books WHERE id = ? AND user_id = ?`, book.ID, book.UserID).Scan(&exists)
		if err != nil {
			return scanNotFound(err)
		}
		return store.ErrConflict
	}

	book.Version++
	return nil
}

// GetBookForUser retrieves a book owned by userID.
func (s *Store) GetBookForUser(ctx context.Context, bookID, userID string) (*domain.Book, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND user_id = ?`, bookID, userID)
	b, err := scanBook(row)
	if err != nil {
		return nil, scanNotFound(err)
	}
	return b, nil
}

// ListBooksForUser returns a user's books, most recently added first.
func (s *Store) ListBooksForUser(ctx context.Context, userID string, filter store.BookFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	where := `WHERE user_id = ?`
	args := []any{userID}
	if filter.CategoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}

	return page(ctx, s.q, params,
		`SELECT COUNT(*) FROM books `+where,
		`SELECT `+bookColumns+` FROM books `+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		args,
		scanBook,
	)
}

// ListAllBooks returns every book regardless of owner.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// DeleteBook removes a book. Sessions and notes go with it via ON DELETE CASCADE.
func (s *Store) DeleteBook(ctx context.Context, bookID, userID string) (int64, error) {
	result, err := s.q.ExecContext(ctx,
		`DELETE FROM books WHERE id = ? AND user_id = ?`, bookID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
