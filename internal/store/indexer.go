package store

import (
	"context"

	"github.com/pagemark/pagemark-server/internal/domain"
)

// SearchIndexer keeps a full-text index in step with committed book writes.
// Callers invoke it after the owning transaction commits; indexing failures
// are logged, never surfaced, because the database stays authoritative.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation of SearchIndexer.
type NoopSearchIndexer struct{}

// IndexBook implements SearchIndexer.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook implements SearchIndexer.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// NewNoopSearchIndexer returns a SearchIndexer that does nothing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}
