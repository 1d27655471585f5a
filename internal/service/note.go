package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pagemark/pagemark-server/internal/domain"
	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/id"
	"github.com/pagemark/pagemark-server/internal/store"
)

// NoteService manages short notes attached to a user's books.
type NoteService struct {
	store  store.Store
	logger *slog.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(st store.Store, logger *slog.Logger) *NoteService {
	return &NoteService{store: st, logger: logger}
}

// CreateNote attaches a note to one of the caller's books.
func (s *NoteService) CreateNote(ctx context.Context, bookID, userID, content string) (*domain.Note, error) {
	noteID, err := id.Generate(id.PrefixNote)
	if err != nil {
		return nil, fmt.Errorf("generate note id: %w", err)
	}

	var note *domain.Note
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		book, err := tx.GetBookForUser(ctx, bookID, userID)
		if err != nil {
			return storeError(err, resourceBook, "bookId")
		}

		note, err = domain.NewNote(noteID, book, content)
		if err != nil {
			return err
		}
		if err := tx.CreateNote(ctx, note); err != nil {
			return storeError(err, resourceNote, "noteId")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.logger.Debug("note created", "note_id", note.ID, "book_id", bookID, "user_id", userID)
	return note, nil
}

// UpdateNote replaces a note's content. The note is reloaded scoped to the
// book and owner, so a note on someone else's book is reported not found.
func (s *NoteService) UpdateNote(ctx context.Context, bookID, noteID, userID, content string) (*domain.Note, error) {
	var note *domain.Note
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		note, err = tx.GetNoteForUser(ctx, noteID, bookID, userID)
		if err != nil {
			return storeError(err, resourceNote, "noteId")
		}
		if err := note.UpdateContent(content); err != nil {
			return err
		}
		if err := tx.UpdateNote(ctx, note); err != nil {
			return storeError(err, resourceNote, "noteId")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.logger.Debug("note updated", "note_id", noteID, "book_id", bookID, "user_id", userID)
	return note, nil
}

// DeleteNote removes a note. A note that vanishes between lookup and delete
// is reported as a concurrency conflict.
func (s *NoteService) DeleteNote(ctx context.Context, bookID, noteID, userID string) error {
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetNoteForUser(ctx, noteID, bookID, userID); err != nil {
			return storeError(err, resourceNote, "noteId")
		}

		affected, err := tx.DeleteNote(ctx, noteID, userID, bookID)
		if err != nil {
			return storeError(err, resourceNote, "noteId")
		}
		if affected == 0 {
			return domainerrors.ConcurrencyConflict("note was removed by a concurrent request")
		}
		return nil
	})
	if err != nil {
		return txError(err)
	}

	s.logger.Debug("note deleted", "note_id", noteID, "book_id", bookID, "user_id", userID)
	return nil
}

// ListNotes returns a page of the book's notes, newest first.
func (s *NoteService) ListNotes(ctx context.Context, bookID, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.Note], error) {
	if err := paginationError(params); err != nil {
		return nil, err
	}
	if _, err := s.store.GetBookForUser(ctx, bookID, userID); err != nil {
		return nil, storeError(err, resourceBook, "bookId")
	}

	page, err := s.store.ListNotes(ctx, bookID, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return page, nil
}
