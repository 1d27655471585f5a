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

// CreateReadingSession stores a new session for an existing book.
func (s *Store) CreateReadingSession(ctx context.Context, session *domain.ReadingSession) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.bookForUser(txn, session.BookID, session.UserID); err != nil {
			return err
		}
		return s.sessions.Create(txn, session.ID, session)
	})
}

// UpdateReadingSession replaces an existing session's values.
func (s *Store) UpdateReadingSession(ctx context.Context, session *domain.ReadingSession) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.sessionForUser(txn, session.ID, session.BookID, session.UserID); err != nil {
			return err
		}
		return s.sessions.Update(txn, session.ID, session)
	})
}

// GetReadingSessionForUser retrieves a session scoped by book and owner.
func (s *Store) GetReadingSessionForUser(ctx context.Context, sessionID, bookID, userID string) (*domain.ReadingSession, error) {
	var rs *domain.ReadingSession
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		rs, err = s.sessionForUser(txn, sessionID, bookID, userID)
		return err
	})
	return rs, err
}

// ListReadingSessions returns a book's sessions, newest session date first.
func (s *Store) ListReadingSessions(ctx context.Context, bookID, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.ReadingSession], error) {
	var sessions []*domain.ReadingSession
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		sessions, err = s.sessions.ListByIndex(txn, "book", bookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	sessions = slices.DeleteFunc(sessions, func(rs *domain.ReadingSession) bool {
		return rs.UserID != userID
	})
	slices.SortFunc(sessions, func(a, b *domain.ReadingSession) int {
		if c := b.SessionDate.Compare(a.SessionDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return store.Paginate(sessions, params)
}

// DeleteReadingSession removes a session and reports how many went.
func (s *Store) DeleteReadingSession(ctx context.Context, sessionID, userID, bookID string) (int64, error) {
	var deleted int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.sessionForUser(txn, sessionID, bookID, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		ok, err := s.sessions.Delete(txn, sessionID)
		if ok {
			deleted = 1
		}
		return err
	})
	return deleted, err
}

func (s *Store) sessionForUser(txn *badger.Txn, sessionID, bookID, userID string) (*domain.ReadingSession, error) {
	rs, err := s.sessions.Get(txn, sessionID)
	if err != nil {
		return nil, err
	}
	if rs.BookID != bookID || rs.UserID != userID {
		return nil, store.ErrNotFound
	}
	return rs, nil
}
