package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	register(s, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories",
		Summary:       "Create category",
		Description:   "Creates a category to file books under. Names are unique per user, ignoring case.",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)

	register(s, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns the user's categories ordered by name",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategories)
}

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" doc:"Category name"`
}

// CreateCategoryInput wraps the create category request for Huma.
type CreateCategoryInput struct {
	Body CreateCategoryRequest
}

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	ID        string    `json:"id" doc:"Category ID"`
	Name      string    `json:"name" doc:"Category name"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// CategoryOutput wraps a single category for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

// ListCategoriesResponse contains the user's categories.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"Categories ordered by name"`
}

// ListCategoriesOutput wraps the category list for Huma.
type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	category, err := s.services.Category.CreateCategory(ctx, userID, service.CreateCategoryRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategoryResponse(category)}, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.services.Category.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListCategoriesOutput{
		Body: ListCategoriesResponse{Categories: mapItems(categories, mapCategoryResponse)},
	}, nil
}

func mapCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}
