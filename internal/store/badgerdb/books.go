package badgerdb

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

// CreateBook stores a new book at version 1.
// The category must exist and belong to the book's owner.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if book.Version == 0 {
		book.Version = 1
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.categoryForUser(txn, book.CategoryID, book.UserID); err != nil {
			return err
		}
		return s.books.Create(txn, book.ID, book)
	})
}

// UpdateBook writes book if its version matches the stored one.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		existing, err := s.bookForUser(txn, book.ID, book.UserID)
		if err != nil {
			return err
		}
		if existing.Version != book.Version {
			return store.ErrConflict
		}
		if book.CategoryID != existing.CategoryID {
			if _, err := s.categoryForUser(txn, book.CategoryID, book.UserID); err != nil {
				return err
			}
		}

		next := *book
		next.TotalPages = existing.TotalPages
		next.CreatedAt = existing.CreatedAt
		next.Version = existing.Version + 1
		return s.books.Update(txn, book.ID, &next)
	})
	if err != nil {
		return err
	}

	book.Version++
	return nil
}

// GetBookForUser retrieves a book owned by userID.
func (s *Store) GetBookForUser(ctx context.Context, bookID, userID string) (*domain.Book, error) {
	var b *domain.Book
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		b, err = s.bookForUser(txn, bookID, userID)
		return err
	})
	return b, err
}

// ListBooksForUser returns a user's books, most recently added first.
func (s *Store) ListBooksForUser(ctx context.Context, userID string, filter store.BookFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	var books []*domain.Book
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		books, err = s.books.ListByIndex(txn, "user", userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if filter.CategoryID != "" {
		books = slices.DeleteFunc(books, func(b *domain.Book) bool {
			return b.CategoryID != filter.CategoryID
		})
	}
	slices.SortFunc(books, func(a, b *domain.Book) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return store.Paginate(books, params)
}

// ListAllBooks returns every book regardless of owner.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		books, err = s.books.List(txn)
		return err
	})
	return books, err
}

// DeleteBook removes a book together with its sessions and notes.
func (s *Store) DeleteBook(ctx context.Context, bookID, userID string) (int64, error) {
	var deleted int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.bookForUser(txn, bookID, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}

		sessions, err := s.sessions.ListByIndex(txn, "book", bookID)
		if err != nil {
			return err
		}
		for _, rs := range sessions {
			if _, err := s.sessions.Delete(txn, rs.ID); err != nil {
				return err
			}
		}

		notes, err := s.notes.ListByIndex(txn, "book", bookID)
		if err != nil {
			return err
		}
		for _, n := range notes {
			if _, err := s.notes.Delete(txn, n.ID); err != nil {
				return err
			}
		}

		ok, err := s.books.Delete(txn, bookID)
		if ok {
			deleted = 1
		}
		return err
	})
	return deleted, err
}

func (s *Store) bookForUser(txn *badger.Txn, bookID, userID string) (*domain.Book, error) {
	b, err := s.books.Get(txn, bookID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, store.ErrNotFound
	}
	return b, nil
}
