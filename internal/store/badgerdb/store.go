// Package badgerdb implements store.Store on Badger, an embedded key-value store.
//
// Badger transactions are optimistic: a unit of work whose reads were
// overwritten by a concurrent commit fails with store.ErrConflict.
package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/normalize"
	"github.com/pagemark/pagemark-server/internal/store"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	txn    *badger.Txn // non-nil inside WithTx
	logger *slog.Logger

	users      *Entity[domain.User]
	categories *Entity[domain.Category]
	books      *Entity[domain.Book]
	sessions   *Entity[domain.ReadingSession]
	notes      *Entity[domain.Note]
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{db: db, logger: logger}
	s.initEntities()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}
	return s, nil
}

func (s *Store) initEntities() {
	s.users = NewEntity[domain.User]("user:").
		WithUniqueIndex("email", func(u *domain.User) []string {
			return []string{normalize.Email(u.Email)}
		})

	s.categories = NewEntity[domain.Category]("category:").
		WithUniqueIndex("name", func(c *domain.Category) []string {
			return []string{c.UserID + ":" + c.Key()}
		}).
		WithIndex("user", func(c *domain.Category) []string { return []string{c.UserID} })

	s.books = NewEntity[domain.Book]("book:").
		WithIndex("user", func(b *domain.Book) []string { return []string{b.UserID} })

	s.sessions = NewEntity[domain.ReadingSession]("rsession:").
		WithIndex("book", func(rs *domain.ReadingSession) []string { return []string{rs.BookID} }).
		WithIndex("user", func(rs *domain.ReadingSession) []string { return []string{rs.UserID} })

	s.notes = NewEntity[domain.Note]("note:").
		WithIndex("book", func(n *domain.Note) []string { return []string{n.BookID} })
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping reports whether the database is open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return s.view(ctx, func(*badger.Txn) error { return nil })
}

// WithTx runs fn inside a single read-write transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.txn != nil {
		return fn(s)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		scoped := *s
		scoped.txn = txn
		return fn(&scoped)
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("commit tx: %w", store.ErrConflict)
	}
	return err
}

// view runs fn on the current transaction, or a new read-only one.
func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.txn != nil {
		return fn(s.txn)
	}
	return s.db.View(fn)
}

// update runs fn on the current transaction, or a new read-write one.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.txn != nil {
		return fn(s.txn)
	}
	err := s.db.Update(fn)
	if errors.Is(err, badger.ErrConflict) {
		return store.ErrConflict
	}
	return err
}
