package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBook_ReportsProgress(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "reader@example.com")
	categoryID := ts.createCategory(t, token, "Fiction")

	book := ts.createBook(t, token, categoryID, "The Left Hand of Darkness", 300, 75)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, categoryID, book.CategoryID)
	assert.Equal(t, 300, book.TotalPages)
	assert.Equal(t, 75, book.PagesRead)
	assert.Equal(t, 25, book.Progress)
	assert.False(t, book.Finished)

	resp := ts.api.Get("/api/v1/books/"+book.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, book.ID, decode[BookResponse](t, resp.Body.Bytes()).Data.ID)
}

func TestCreateBook_Validation(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "reader@example.com")
	categoryID := ts.createCategory(t, token, "Fiction")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{
			name:  "zero total pages",
			body:  map[string]any{"title": "T", "author": "A", "total_pages": 0, "category_id": categoryID},
			field: "total_pages",
		},
		{
			name:  "pages read beyond total",
			body:  map[string]any{"title": "T", "author": "A", "total_pages": 10, "pages_read": 11, "category_id": categoryID},
			field: "pages_read",
		},
		{
			name:  "blank title",
			body:  map[string]any{"title": " ", "author": "A", "total_pages": 10, "category_id": categoryID},
			field: "title",
		},
		{
			name:  "missing author",
			body:  map[string]any{"title": "T", "total_pages": 10, "category_id": categoryID},
			field: "author",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/books", bearer(token), tt.body)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			envelope := decode[any](t, resp.Body.Bytes())
			assert.Equal(t, "VALIDATION", envelope.Code)
			assert.Equal(t, tt.field, envelope.Field)
		})
	}
}

func TestCreateBook_UnknownCategory(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "reader@example.com")

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title":       "Earthsea",
		"author":      "Ursula K. Le Guin",
		"total_pages": 200,
		"category_id": "cat_missing",
	})

	require.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
	envelope := decode[any](t, resp.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, "category", envelope.Resource)
	assert.Equal(t, "category_id", envelope.Field)
}

func TestListBooks_FilterByCategory(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "reader@example.com")
	fiction := ts.createCategory(t, token, "Fiction")
	science := ts.createCategory(t, token, "Science")

	ts.createBook(t, token, fiction, "The Dispossessed", 400, 0)
	ts.createBook(t, token, fiction, "The Lathe of Heaven", 180, 0)
	ts.createBook(t, token, science, "Cosmos", 380, 0)

	resp := ts.api.Get("/api/v1/books", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	all := decode[ListBooksResponse](t, resp.Body.Bytes()).Data
	assert.Len(t, all.Books, 3)
	assert.Equal(t, 3, all.Total)
	assert.False(t, all.HasMore)

	resp = ts.api.Get("/api/v1/books?category_id="+fiction, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	filtered := decode[ListBooksResponse](t, resp.Body.Bytes()).Data.Books
	require.Len(t, filtered, 2)
	for _, b := range filtered {
		assert.Equal(t, fiction, b.CategoryID)
	}
}

func TestListBooks_Pagination(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "reader@example.com")
	categoryID := ts.createCategory(t, token, "Fiction")
	for _, title := range []string{"One", "Two", "Three"} {
		ts.createBook(t, token, categoryID, title, 100, 0)
	}

	resp := ts.api.Get("/api/v1/books?limit=2", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decode[ListBooksResponse](t, resp.Body.Bytes()).Data
	require.Len(t, first.Books, 2)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	resp = ts.api.Get("/api/v1/books?limit=2&cursor="+first.NextCursor, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	second := decode[ListBooksResponse](t, resp.Body.Bytes()).Data
	require.Len(t, second.Books, 1)
	assert.False(t, second.HasMore)
}

func TestSearchBooks(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "reader@example.com")
	categoryID := ts.createCategory(t, token, "Fiction")
	ts.createBook(t, token, categoryID, "The Dispossessed", 400, 0)
	ts.createBook(t, token, categoryID, "A Wizard of Earthsea", 180, 0)

	other := ts.registerUser(t, "other@example.com")
	otherCategory := ts.createCategory(t, other, "Fiction")
	ts.createBook(t, other, otherCategory, "Tales from Earthsea", 250, 0)

	resp := ts.api.Get("/api/v1/books/search?q=earthsea", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decode[SearchBooksResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "earthsea", result.Query)
	require.Len(t, result.Books, 1)
	assert.Equal(t, "A Wizard of Earthsea", result.Books[0].Title)
}

func TestSearchBooks_BlankQuery(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "reader@example.com")

	resp := ts.api.Get("/api/v1/books/search?q=", bearer(token))

	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Equal(t, "q", decode[any](t, resp.Body.Bytes()).Field)
}

func TestDeleteBook(t *testing.T) {
	ts := setupTestServer(t)
	token, book := ts.seedReader(t, "reader@example.com", 100, 0)

	resp := ts.api.Delete("/api/v1/books/"+book.ID, bearer(token))
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/books/"+book.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/books/"+book.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBooks_ScopedToOwner(t *testing.T) {
	ts := setupTestServer(t)
	_, book := ts.seedReader(t, "alice@example.com", 100, 0)
	bob := ts.registerUser(t, "bob@example.com")

	resp := ts.api.Get("/api/v1/books/"+book.ID, bearer(bob))
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "book", decode[any](t, resp.Body.Bytes()).Resource)

	resp = ts.api.Delete("/api/v1/books/"+book.ID, bearer(bob))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
