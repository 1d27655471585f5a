package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagemark/pagemark-server/internal/service"
	"github.com/pagemark/pagemark-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	register(s, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a book to one of the user's categories",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	register(s, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of the user's books, newest first",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	register(s, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search books",
		Description: "Full-text search over the user's books by title and author",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)

	register(s, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookId}",
		Summary:     "Get book",
		Description: "Returns a book with its reading progress",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	register(s, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{bookId}",
		Summary:       "Delete book",
		Description:   "Deletes a book together with its reading sessions and notes",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title      string `json:"title" doc:"Book title"`
	Author     string `json:"author" doc:"Book author"`
	TotalPages int    `json:"total_pages" doc:"Number of pages, greater than zero"`
	PagesRead  int    `json:"pages_read,omitempty" doc:"Pages already read before tracking started"`
	CategoryID string `json:"category_id" doc:"Category to file the book under"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// BookIDInput identifies a book by path parameter.
type BookIDInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
}

// ListBooksInput holds the book listing filters.
type ListBooksInput struct {
	PageQuery
	CategoryID string `query:"category_id" doc:"Only return books in this category"`
}

// SearchBooksInput holds the search query parameters.
type SearchBooksInput struct {
	Query string `query:"q" doc:"Words to match against title and author"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum results"`
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID         string    `json:"id" doc:"Book ID"`
	CategoryID string    `json:"category_id" doc:"Category ID"`
	Title      string    `json:"title" doc:"Book title"`
	Author     string    `json:"author" doc:"Book author"`
	TotalPages int       `json:"total_pages" doc:"Number of pages"`
	PagesRead  int       `json:"pages_read" doc:"Pages read so far"`
	Progress   int       `json:"progress" doc:"Percentage read, 0 to 100"`
	Finished   bool      `json:"finished" doc:"Whether every page has been read"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt  time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// ListBooksResponse contains a page of books.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Books on this page"`
	PageInfo
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// SearchBooksResponse contains search results.
type SearchBooksResponse struct {
	Query string         `json:"query" doc:"The query that was run"`
	Books []BookResponse `json:"books" doc:"Matching books, best match first"`
}

// SearchBooksOutput wraps search results for Huma.
type SearchBooksOutput struct {
	Body SearchBooksResponse
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, userID, service.CreateBookRequest{
		TotalPages: input.Body.TotalPages,
		PagesRead:  input.Body.PagesRead,
		CategoryID: input.Body.CategoryID,
		Title:      input.Body.Title,
		Author:     input.Body.Author,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Book.ListBooks(ctx, userID, store.BookFilter{CategoryID: input.CategoryID}, input.params())
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{
		Body: ListBooksResponse{
			Books:    mapItems(page.Items, mapBookResponse),
			PageInfo: pageInfo(page),
		},
	}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.SearchBooks(ctx, userID, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchBooksOutput{
		Body: SearchBooksResponse{
			Query: input.Query,
			Books: mapItems(books, mapBookResponse),
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.BookID, userID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.BookID, userID); err != nil {
		return nil, err
	}
	return nil, nil
}

func mapBookResponse(b *service.BookView) BookResponse {
	return BookResponse{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Title:      b.Title,
		Author:     b.Author,
		TotalPages: b.TotalPages,
		PagesRead:  b.PagesRead,
		Progress:   b.Progress,
		Finished:   b.Finished,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
