package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pagemark/pagemark-server/internal/domain"
	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/id"
	"github.com/pagemark/pagemark-server/internal/normalize"
	"github.com/pagemark/pagemark-server/internal/search"
	"github.com/pagemark/pagemark-server/internal/store"
	"github.com/pagemark/pagemark-server/internal/validation"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// BookSearcher runs full-text queries over indexed books.
type BookSearcher interface {
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
}

// CreateBookRequest describes a book to add to the catalog. Fields are
// declared in the order they are checked.
type CreateBookRequest struct {
	TotalPages int    `json:"totalPages" validate:"gt=0"`
	PagesRead  int    `json:"pagesRead" validate:"gte=0"`
	CategoryID string `json:"categoryId" validate:"notblank"`
	Title      string `json:"title" validate:"notblank,runemax=500"`
	Author     string `json:"author" validate:"notblank,runemax=300"`
}

// BookView is a book with its derived progress.
type BookView struct {
	*domain.Book
	Progress int  `json:"progress"`
	Finished bool `json:"finished"`
}

// NewBookView wraps b with its computed progress.
func NewBookView(b *domain.Book) *BookView {
	return &BookView{Book: b, Progress: b.Progress(), Finished: b.IsFinished()}
}

// BookService manages a user's catalog and keeps the search index in step.
type BookService struct {
	store     store.Store
	indexer   store.SearchIndexer
	searcher  BookSearcher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service. indexer may be a no-op and
// searcher may be nil, in which case searches scan the catalog.
func NewBookService(st store.Store, indexer store.SearchIndexer, searcher BookSearcher, v *validation.Validator, logger *slog.Logger) *BookService {
	if indexer == nil {
		indexer = store.NewNoopSearchIndexer()
	}
	return &BookService{
		store:     st,
		indexer:   indexer,
		searcher:  searcher,
		validator: v,
		logger:    logger,
	}
}

// CreateBook adds a book to one of the user's categories.
func (s *BookService) CreateBook(ctx context.Context, userID string, req CreateBookRequest) (*BookView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book id: %w", err)
	}

	var book *domain.Book
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetCategoryForUser(ctx, req.CategoryID, userID); err != nil {
			return storeError(err, resourceCategory, "categoryId")
		}

		var err error
		book, err = domain.NewBook(domain.BookParams{
			ID:         bookID,
			UserID:     userID,
			CategoryID: req.CategoryID,
			Title:      req.Title,
			Author:     req.Author,
			TotalPages: req.TotalPages,
			PagesRead:  req.PagesRead,
		})
		if err != nil {
			return err
		}
		if err := tx.CreateBook(ctx, book); err != nil {
			return storeError(err, resourceBook, "bookId")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	if err := s.indexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}

	s.logger.Info("book created", "book_id", book.ID, "user_id", userID, "title", book.Title)
	return NewBookView(book), nil
}

// GetBook returns one of the user's books.
func (s *BookService) GetBook(ctx context.Context, bookID, userID string) (*BookView, error) {
	book, err := s.store.GetBookForUser(ctx, bookID, userID)
	if err != nil {
		return nil, storeError(err, resourceBook, "bookId")
	}
	return NewBookView(book), nil
}

// ListBooks returns a page of the user's books, newest first.
func (s *BookService) ListBooks(ctx context.Context, userID string, filter store.BookFilter, params store.PaginationParams) (*store.PaginatedResult[*BookView], error) {
	if err := paginationError(params); err != nil {
		return nil, err
	}
	if filter.CategoryID != "" {
		if _, err := s.store.GetCategoryForUser(ctx, filter.CategoryID, userID); err != nil {
			return nil, storeError(err, resourceCategory, "categoryId")
		}
	}

	page, err := s.store.ListBooksForUser(ctx, userID, filter, params)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	views := make([]*BookView, len(page.Items))
	for i, b := range page.Items {
		views[i] = NewBookView(b)
	}
	return &store.PaginatedResult[*BookView]{
		Items:      views,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
		Total:      page.Total,
	}, nil
}

// DeleteBook removes a book along with its sessions and notes.
func (s *BookService) DeleteBook(ctx context.Context, bookID, userID string) error {
	affected, err := s.store.DeleteBook(ctx, bookID, userID)
	if err != nil {
		return storeError(err, resourceBook, "bookId")
	}
	if affected == 0 {
		return domainerrors.ResourceNotFound(resourceBook, "bookId")
	}

	if err := s.indexer.DeleteBook(ctx, bookID); err != nil {
		s.logger.Warn("failed to remove book from index", "book_id", bookID, "error", err)
	}

	s.logger.Info("book deleted", "book_id", bookID, "user_id", userID)
	return nil
}

// SearchBooks finds the user's books matching query by title or author,
// best match first.
func (s *BookService) SearchBooks(ctx context.Context, userID, query string, limit int) ([]*BookView, error) {
	if normalize.IsBlank(query) {
		return nil, domainerrors.FieldValidation("q", "search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	if s.searcher == nil {
		return s.scanBooks(ctx, userID, query, limit)
	}

	res, err := s.searcher.Search(ctx, search.SearchParams{
		UserID: userID,
		Query:  query,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	views := make([]*BookView, 0, len(res.Hits))
	for _, hit := range res.Hits {
		book, err := s.store.GetBookForUser(ctx, hit.ID, userID)
		if err != nil {
			// The index can briefly trail the store after a delete.
			s.logger.Debug("skipping stale search hit", "book_id", hit.ID, "error", err)
			continue
		}
		views = append(views, NewBookView(book))
	}
	return views, nil
}

// scanBooks is the index-free search: a case-insensitive substring match on
// title and author over the user's whole catalog.
func (s *BookService) scanBooks(ctx context.Context, userID, query string, limit int) ([]*BookView, error) {
	needle := normalize.Key(query)
	params := store.PaginationParams{Limit: 1000}

	var views []*BookView
	for {
		page, err := s.store.ListBooksForUser(ctx, userID, store.BookFilter{}, params)
		if err != nil {
			return nil, fmt.Errorf("scan books: %w", err)
		}
		for _, b := range page.Items {
			if strings.Contains(normalize.Key(b.Title), needle) || strings.Contains(normalize.Key(b.Author), needle) {
				views = append(views, NewBookView(b))
				if len(views) == limit {
					return views, nil
				}
			}
		}
		if !page.HasMore {
			return views, nil
		}
		params.Cursor = page.NextCursor
	}
}
