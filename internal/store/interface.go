// Package store defines the persistence interfaces for the Pagemark server.
//
// Lookups of user-owned data are owner-scoped: a record that exists but
// belongs to another user is reported as ErrNotFound, never as forbidden.
package store

import (
	"context"
	"time"

	"github.com/pagemark/pagemark-server/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// CategoryStore persists book categories.
type CategoryStore interface {
	// CreateCategory returns ErrAlreadyExists when the user already has a
	// category with the same case-insensitive name.
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategoryForUser(ctx context.Context, categoryID, userID string) (*domain.Category, error)
	ListCategories(ctx context.Context, userID string) ([]*domain.Category, error)
}

// BookFilter narrows ListBooksForUser.
type BookFilter struct {
	CategoryID string
}

// BookStore persists books.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error

	// UpdateBook writes book if its Version still matches the stored row,
	// then increments book.Version. Returns ErrConflict when another writer
	// got there first and ErrNotFound when the book is gone.
	UpdateBook(ctx context.Context, book *domain.Book) error

	GetBookForUser(ctx context.Context, bookID, userID string) (*domain.Book, error)
	ListBooksForUser(ctx context.Context, userID string, filter BookFilter, params PaginationParams) (*PaginatedResult[*domain.Book], error)

	// ListAllBooks returns every book regardless of owner. Used to rebuild
	// the search index.
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)

	// DeleteBook removes the book with its sessions and notes.
	// Returns the number of books removed.
	DeleteBook(ctx context.Context, bookID, userID string) (int64, error)
}

// ReadingSessionStore persists reading sessions.
type ReadingSessionStore interface {
	CreateReadingSession(ctx context.Context, session *domain.ReadingSession) error
	UpdateReadingSession(ctx context.Context, session *domain.ReadingSession) error
	GetReadingSessionForUser(ctx context.Context, sessionID, bookID, userID string) (*domain.ReadingSession, error)

	// ListReadingSessions returns a book's sessions, newest session date first.
	ListReadingSessions(ctx context.Context, bookID, userID string, params PaginationParams) (*PaginatedResult[*domain.ReadingSession], error)

	// DeleteReadingSession returns the number of sessions removed.
	// Zero means nothing matched; it is not an error at this layer.
	DeleteReadingSession(ctx context.Context, sessionID, userID, bookID string) (int64, error)
}

// NoteStore persists notes.
type NoteStore interface {
	CreateNote(ctx context.Context, note *domain.Note) error
	UpdateNote(ctx context.Context, note *domain.Note) error
	GetNoteForUser(ctx context.Context, noteID, bookID, userID string) (*domain.Note, error)

	// ListNotes returns a book's notes, newest first.
	ListNotes(ctx context.Context, bookID, userID string, params PaginationParams) (*PaginatedResult[*domain.Note], error)

	// DeleteNote returns the number of notes removed.
	DeleteNote(ctx context.Context, noteID, userID, bookID string) (int64, error)
}

// StatsStore computes reading aggregates.
type StatsStore interface {
	// GetReadingStats summarizes userID's catalog. Daily totals cover
	// sessions dated on or after since.
	GetReadingStats(ctx context.Context, userID string, since time.Time) (*domain.ReadingStats, error)
}

// Tx is the set of operations available inside a unit of work.
type Tx interface {
	UserStore
	CategoryStore
	BookStore
	ReadingSessionStore
	NoteStore
}

// Transactor runs a function inside one atomic unit of work.
//
// If fn returns an error nothing it wrote is kept. Backends that detect a
// conflicting concurrent commit return ErrConflict.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Store is the full persistence surface.
type Store interface {
	Tx
	StatsStore
	Transactor

	Ping(ctx context.Context) error
	Close() error
}
