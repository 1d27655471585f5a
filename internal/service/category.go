package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/id"
	"github.com/pagemark/pagemark-server/internal/store"
	"github.com/pagemark/pagemark-server/internal/validation"
)

// CreateCategoryRequest names a new category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"notblank,runemax=100"`
}

// CategoryService manages the categories books are filed under.
type CategoryService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(st store.Store, v *validation.Validator, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: st, validator: v, logger: logger}
}

// CreateCategory creates a category for userID. Names are unique per user,
// ignoring case.
func (s *CategoryService) CreateCategory(ctx context.Context, userID string, req CreateCategoryRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	categoryID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, fmt.Errorf("generate category id: %w", err)
	}

	category, err := domain.NewCategory(categoryID, userID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, storeError(err, resourceCategory, "name")
	}

	s.logger.Info("category created", "category_id", category.ID, "user_id", userID, "name", category.Name)
	return category, nil
}

// ListCategories returns the user's categories ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
