package api

import (
	"github.com/pagemark/pagemark-server/internal/store"
)

// PageQuery defines common cursor pagination query parameters.
type PageQuery struct {
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"1000" doc:"Items per page"`
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page's next_cursor"`
}

// params converts the query into store pagination parameters.
func (q PageQuery) params() store.PaginationParams {
	params := store.PaginationParams{Limit: q.Limit, Cursor: q.Cursor}
	params.Validate()
	return params
}

// PageInfo describes the position of a page within a listing.
type PageInfo struct {
	NextCursor string `json:"next_cursor,omitempty" doc:"Cursor for the next page; empty on the last page"`
	HasMore    bool   `json:"has_more" doc:"Whether more pages exist"`
	Total      int    `json:"total" doc:"Total count across all pages"`
}

func pageInfo[T any](page *store.PaginatedResult[T]) PageInfo {
	return PageInfo{NextCursor: page.NextCursor, HasMore: page.HasMore, Total: page.Total}
}

// mapItems converts each element of in with fn.
func mapItems[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
