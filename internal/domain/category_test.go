package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("cat-1", "user-1", "  Science Fiction ")
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", c.Name)
	assert.Equal(t, "science fiction", c.Key())

	_, err = NewCategory("cat-2", "user-1", " ")
	requireFieldError(t, err, "name")

	_, err = NewCategory("cat-3", "user-1", strings.Repeat("x", MaxCategoryNameLength+1))
	requireFieldError(t, err, "name")

	_, err = NewCategory("cat-4", "", "Fiction")
	requireFieldError(t, err, "userId")
}
