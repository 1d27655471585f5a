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

// CreateNote stores a new note for an existing book.
func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.bookForUser(txn, note.BookID, note.UserID); err != nil {
			return err
		}
		return s.notes.Create(txn, note.ID, note)
	})
}

// UpdateNote replaces an existing note.
func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.noteForUser(txn, note.ID, note.BookID, note.UserID); err != nil {
			return err
		}
		return s.notes.Update(txn, note.ID, note)
	})
}

// GetNoteForUser retrieves a note scoped by book and owner.
func (s *Store) GetNoteForUser(ctx context.Context, noteID, bookID, userID string) (*domain.Note, error) {
	var n *domain.Note
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		n, err = s.noteForUser(txn, noteID, bookID, userID)
		return err
	})
	return n, err
}

// ListNotes returns a book's notes, newest first.
func (s *Store) ListNotes(ctx context.Context, bookID, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.Note], error) {
	var notes []*domain.Note
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		notes, err = s.notes.ListByIndex(txn, "book", bookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	notes = slices.DeleteFunc(notes, func(n *domain.Note) bool { return n.UserID != userID })
	slices.SortFunc(notes, func(a, b *domain.Note) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return store.Paginate(notes, params)
}

// DeleteNote removes a note and reports how many went.
func (s *Store) DeleteNote(ctx context.Context, noteID, userID, bookID string) (int64, error) {
	var deleted int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.noteForUser(txn, noteID, bookID, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		ok, err := s.notes.Delete(txn, noteID)
		if ok {
			deleted = 1
		}
		return err
	})
	return deleted, err
}

func (s *Store) noteForUser(txn *badger.Txn, noteID, bookID, userID string) (*domain.Note, error) {
	n, err := s.notes.Get(txn, noteID)
	if err != nil {
		return nil, err
	}
	if n.BookID != bookID || n.UserID != userID {
		return nil, store.ErrNotFound
	}
	return n, nil
}
