package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/store"
)

func TestCategoryService(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		ctx := context.Background()
		seedUser(t, st, "user-1")

		created, err := env.categories.CreateCategory(ctx, "user-1", CreateCategoryRequest{Name: "Science Fiction"})
		require.NoError(t, err)
		assert.Equal(t, "Science Fiction", created.Name)

		_, err = env.categories.CreateCategory(ctx, "user-1", CreateCategoryRequest{Name: "  science   FICTION "})
		requireDomainError(t, err, domainerrors.CodeAlreadyExists)

		_, err = env.categories.CreateCategory(ctx, "user-1", CreateCategoryRequest{Name: " "})
		domainErr := requireDomainError(t, err, domainerrors.CodeValidation)
		assert.Equal(t, "name", domainErr.Field)

		categories, err := env.categories.ListCategories(ctx, "user-1")
		require.NoError(t, err)

		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = c.Name
		}
		assert.Equal(t, []string{"Fiction", "Science Fiction"}, names)
	})
}

func TestCategoryService_SameNameDifferentUsers(t *testing.T) {
	st := openSQLite(t)
	env := newTestEnv(t, st)
	ctx := context.Background()
	seedUser(t, st, "user-1")
	seedUser(t, st, "user-2")

	_, err := env.categories.CreateCategory(ctx, "user-1", CreateCategoryRequest{Name: "History"})
	require.NoError(t, err)
	_, err = env.categories.CreateCategory(ctx, "user-2", CreateCategoryRequest{Name: "History"})
	assert.NoError(t, err)
}
