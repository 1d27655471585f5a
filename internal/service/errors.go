// Package service implements the Pagemark use cases on top of a store.
//
// Services return *errors.Error values for every failure a caller can act
// on: validation, not found, already exists and concurrency conflict.
// Anything else is wrapped with context and treated as internal.
package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/store"
)

// Resource names reported in not-found errors.
const (
	resourceUser           = "user"
	resourceCategory       = "category"
	resourceBook           = "book"
	resourceReadingSession = "readingSession"
	resourceNote           = "note"
)

// storeError translates a store sentinel into a domain error about resource,
// which was looked up by field.
func storeError(err error, resource, field string) error {
	if err == nil {
		return nil
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.ResourceNotFound(resource, field)
	case errors.Is(err, store.ErrConflict):
		return domainerrors.ConcurrencyConflict(resource + " was modified concurrently").WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(resource + " already exists").WithCause(err)
	default:
		return fmt.Errorf("%s: %w", resource, err)
	}
}

// txError translates failures raised by the unit of work itself, such as a
// commit that lost a race. Domain errors from inside the unit pass through.
func txError(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, store.ErrConflict) {
		return domainerrors.ConcurrencyConflict("concurrent update, retry the operation").WithCause(err)
	}
	return err
}

// paginationError validates the cursor before it reaches the store.
func paginationError(params store.PaginationParams) error {
	if _, err := params.Offset(); err != nil {
		return domainerrors.FieldValidation("cursor", "cursor is invalid")
	}
	return nil
}
