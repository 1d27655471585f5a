// Package search provides full-text search over a user's book catalog using Bleve.
package search

import (
	"github.com/pagemark/pagemark-server/internal/domain"
)

// BookDocument is the representation of a book stored in the index.
type BookDocument struct {
	ID         string
	UserID     string
	CategoryID string
	Title      string
	Author     string
	TotalPages int
	CreatedAt  int64 // Unix milliseconds
}

// BookToDocument converts a domain book into an index document.
func BookToDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:         b.ID,
		UserID:     b.UserID,
		CategoryID: b.CategoryID,
		Title:      b.Title,
		Author:     b.Author,
		TotalPages: b.TotalPages,
		CreatedAt:  b.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to the field names used by the mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"user_id":     d.UserID,
		"category_id": d.CategoryID,
		"title":       d.Title,
		"author":      d.Author,
		"total_pages": float64(d.TotalPages),
		"created_at":  float64(d.CreatedAt),
	}
}
