package domain

import (
	"github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/normalize"
)

// MaxCategoryNameLength is the longest category name accepted, in characters.
const MaxCategoryNameLength = 100

// Category groups a user's books (e.g. "Fiction", "Work").
// Names are unique per user, compared case-insensitively.
type Category struct {
	Syncable
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// NewCategory validates and creates a category owned by userID.
func NewCategory(id, userID, name string) (*Category, error) {
	if normalize.IsBlank(userID) {
		return nil, errors.FieldValidation("userId", "user id is required")
	}
	name = normalize.Text(name)
	if name == "" {
		return nil, errors.FieldValidation("name", "category name is required")
	}
	if normalize.Length(name) > MaxCategoryNameLength {
		return nil, errors.FieldValidation("name", "category name is too long")
	}

	c := &Category{
		Syncable: Syncable{ID: id},
		UserID:   userID,
		Name:     name,
	}
	c.InitTimestamps()
	return c, nil
}

// Key returns the case-insensitive uniqueness key for the category name.
func (c *Category) Key() string {
	return normalize.Key(c.Name)
}
