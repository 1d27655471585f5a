package badgerdb

import (
	"context"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

// CreateCategory stores a new category for an existing user.
func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.users.Get(txn, category.UserID); err != nil {
			return err
		}
		return s.categories.Create(txn, category.ID, category)
	})
}

// GetCategoryForUser retrieves a category owned by userID.
func (s *Store) GetCategoryForUser(ctx context.Context, categoryID, userID string) (*domain.Category, error) {
	var c *domain.Category
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		c, err = s.categoryForUser(txn, categoryID, userID)
		return err
	})
	return c, err
}

// ListCategories returns a user's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		categories, err = s.categories.ListByIndex(txn, "user", userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(categories, func(a, b *domain.Category) int {
		return strings.Compare(a.Key(), b.Key())
	})
	return categories, nil
}

func (s *Store) categoryForUser(txn *badger.Txn, categoryID, userID string) (*domain.Category, error) {
	c, err := s.categories.Get(txn, categoryID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, store.ErrNotFound
	}
	return c, nil
}
