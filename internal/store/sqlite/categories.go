package sqlite

import (
	"context"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

const categoryColumns = `id, user_id, name, created_at, updated_at`

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c         domain.Category
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&c.ID, &c.UserID, &c.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a new category.
func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, name_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.UserID,
		category.Name,
		category.Key(),
		formatTime(category.CreatedAt),
		formatTime(category.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return store.ErrNotFound
	}
	return err
}

// GetCategoryForUser retrieves a category owned by userID.
func (s *Store) GetCategoryForUser(ctx context.Context, categoryID, userID string) (*domain.Category, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`,
		categoryID, userID)
	c, err := scanCategory(row)
	if err != nil {
		return nil, scanNotFound(err)
	}
	return c, nil
}

// ListCategories returns a user's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name_key`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
