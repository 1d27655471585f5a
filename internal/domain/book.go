package domain

import (
	"github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/normalize"
)

// Book tracks one title in a user's catalog and how far they have read it.
//
// The invariant 0 <= PagesRead <= TotalPages holds for every Book returned by
// NewBook and is re-checked by every mutating method. PagesRead is kept equal
// to the sum of the book's reading sessions by the session operations in the
// service layer.
type Book struct {
	Syncable
	UserID     string `json:"user_id"`
	CategoryID string `json:"category_id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	TotalPages int    `json:"total_pages"`
	PagesRead  int    `json:"pages_read"`

	// Version is managed by the store for optimistic concurrency.
	Version int64 `json:"version"`
}

// BookParams holds the caller-supplied fields for a new Book.
type BookParams struct {
	ID         string
	UserID     string
	CategoryID string
	Title      string
	Author     string
	TotalPages int
	PagesRead  int
}

// NewBook validates p and returns a new Book with fresh timestamps.
func NewBook(p BookParams) (*Book, error) {
	if p.TotalPages <= 0 {
		return nil, errors.FieldValidation("totalPages", "total pages must be greater than zero")
	}
	if p.PagesRead < 0 {
		return nil, errors.FieldValidation("pagesRead", "pages read cannot be negative")
	}
	if p.PagesRead > p.TotalPages {
		return nil, errors.FieldValidation("pagesRead", "pages read cannot exceed total pages")
	}
	if normalize.IsBlank(p.UserID) {
		return nil, errors.FieldValidation("userId", "user id is required")
	}
	if normalize.IsBlank(p.CategoryID) {
		return nil, errors.FieldValidation("categoryId", "category id is required")
	}
	title := normalize.Text(p.Title)
	if title == "" {
		return nil, errors.FieldValidation("title", "title is required")
	}
	author := normalize.Text(p.Author)
	if author == "" {
		return nil, errors.FieldValidation("author", "author is required")
	}

	b := &Book{
		Syncable:   Syncable{ID: p.ID},
		UserID:     p.UserID,
		CategoryID: p.CategoryID,
		Title:      title,
		Author:     author,
		TotalPages: p.TotalPages,
		PagesRead:  p.PagesRead,
	}
	b.InitTimestamps()
	return b, nil
}

// AddPagesRead records pages as read.
// Adding zero pages is a no-op.
func (b *Book) AddPagesRead(pages int) error {
	if pages < 0 {
		return errors.FieldValidation("pagesRead", "pages to add cannot be negative")
	}
	if pages == 0 {
		return nil
	}
	if b.PagesRead+pages > b.TotalPages {
		return errors.FieldValidation("pagesRead", "pages read cannot exceed total pages")
	}
	b.PagesRead += pages
	b.Touch()
	return nil
}

// RemovePagesRead takes back pages previously recorded as read.
// Removing zero pages is a no-op.
func (b *Book) RemovePagesRead(pages int) error {
	if pages < 0 {
		return errors.FieldValidation("pagesRead", "pages to remove cannot be negative")
	}
	if pages == 0 {
		return nil
	}
	if b.PagesRead-pages < 0 {
		return errors.FieldValidation("pagesRead", "pages read cannot be negative")
	}
	b.PagesRead -= pages
	b.Touch()
	return nil
}

// ReplacePagesRead swaps a previous contribution of oldPages for newPages.
// The resulting value is checked before anything changes, so on error the
// book is left exactly as it was.
func (b *Book) ReplacePagesRead(oldPages, newPages int) error {
	if oldPages < 0 || newPages < 0 {
		return errors.FieldValidation("pagesRead", "pages read cannot be negative")
	}
	if oldPages > b.PagesRead {
		return errors.FieldValidation("pagesRead", "pages read cannot be negative")
	}
	if b.PagesRead-oldPages+newPages > b.TotalPages {
		return errors.FieldValidation("pagesRead", "pages read cannot exceed total pages")
	}

	if err := b.RemovePagesRead(oldPages); err != nil {
		return err
	}
	return b.AddPagesRead(newPages)
}

// Progress returns the percentage of the book read, truncated to an integer
// in [0, 100].
func (b *Book) Progress() int {
	if b.TotalPages <= 0 {
		return 0
	}
	return b.PagesRead * 100 / b.TotalPages
}

// IsFinished reports whether every page has been read.
func (b *Book) IsFinished() bool {
	return b.TotalPages > 0 && b.PagesRead == b.TotalPages
}

// RemainingPages returns how many pages are left to read.
func (b *Book) RemainingPages() int {
	return b.TotalPages - b.PagesRead
}
