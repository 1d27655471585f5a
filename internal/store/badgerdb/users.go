package badgerdb

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/normalize"
)

// CreateUser stores a new user. Emails are unique ignoring case.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return s.users.Create(txn, user.ID, user)
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u *domain.User
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		u, err = s.users.Get(txn, id)
		return err
	})
	return u, err
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u *domain.User
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		u, err = s.users.GetByIndex(txn, "email", normalize.Email(email))
		return err
	})
	return u, err
}

// UpdateUser replaces an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return s.users.Update(txn, user.ID, user)
	})
}
