package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaginationParams(t *testing.T) {
	params := DefaultPaginationParams()
	assert.Equal(t, 100, params.Limit)
	assert.Empty(t, params.Cursor)
}

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name          string
		input         PaginationParams
		expectedLimit int
	}{
		{"valid parameters", PaginationParams{Limit: 50}, 50},
		{"zero limit defaults to 100", PaginationParams{Limit: 0}, 100},
		{"negative limit defaults to 100", PaginationParams{Limit: -10}, 100},
		{"limit over 1000 caps at 1000", PaginationParams{Limit: 5000}, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.input
			params.Validate()
			assert.Equal(t, tt.expectedLimit, params.Limit)
		})
	}
}

func TestPaginationParams_Offset(t *testing.T) {
	offset, err := PaginationParams{}.Offset()
	require.NoError(t, err)
	assert.Equal(t, 0, offset)

	offset, err = PaginationParams{Cursor: OffsetCursor(40)}.Offset()
	require.NoError(t, err)
	assert.Equal(t, 40, offset)

	_, err = PaginationParams{Cursor: "!!not-base64"}.Offset()
	assert.Error(t, err)

	_, err = PaginationParams{Cursor: EncodeCursor("book-123")}.Offset()
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, err := Paginate(items, PaginationParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, page.Items)
	assert.True(t, page.HasMore)
	assert.Equal(t, 5, page.Total)

	page, err = Paginate(items, PaginationParams{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, page.Items)

	page, err = Paginate(items, PaginationParams{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []int{5}, page.Items)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)

	page, err = Paginate(items, PaginationParams{Limit: 2, Cursor: OffsetCursor(10)})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
