package store

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int    // The number of items per page (defaults to 100 with a maximum of 1000)
	Cursor string // Opaque cursor for next page (empty for first page)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"` // Empty if no more pages
	HasMore    bool   `json:"has_more"`
	Total      int    `json:"total"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Limit:  100,
		Cursor: "",
	}
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = 100
	}

	if p.Limit > 1000 {
		p.Limit = 1000
	}
}

// Offset decodes the cursor into the number of items already returned.
func (p PaginationParams) Offset() (int, error) {
	key, err := DecodeCursor(p.Cursor)
	if err != nil {
		return 0, err
	}
	if key == "" {
		return 0, nil
	}

	raw, ok := strings.CutPrefix(key, "offset:")
	if !ok {
		return 0, fmt.Errorf("invalid cursor: %q", p.Cursor)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid cursor: %q", p.Cursor)
	}
	return n, nil
}

// OffsetCursor returns the cursor for the page starting at offset.
func OffsetCursor(offset int) string {
	return EncodeCursor("offset:" + strconv.Itoa(offset))
}

// EncodeCursor creates an opaque cursor from a key.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor decodes a cursor back to a key.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}

	return string(decoded), nil
}

// Paginate slices items (already ordered) into one page.
// Backends that cannot page natively load the full ordered set and call this.
func Paginate[T any](items []T, params PaginationParams) (*PaginatedResult[T], error) {
	params.Validate()
	offset, err := params.Offset()
	if err != nil {
		return nil, err
	}

	result := &PaginatedResult[T]{Items: []T{}, Total: len(items)}
	if offset >= len(items) {
		return result, nil
	}

	end := min(offset+params.Limit, len(items))
	result.Items = items[offset:end]
	if end < len(items) {
		result.HasMore = true
		result.NextCursor = OffsetCursor(end)
	}
	return result, nil
}
