package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
)

func TestWireField(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"minutes":     "minutes",
		"pagesRead":   "pages_read",
		"categoryId":  "category_id",
		"sessionDate": "session_date",
		"q":           "q",
	}
	for in, want := range tests {
		assert.Equal(t, want, wireField(in), in)
	}
}

func TestNewAPIError_DomainError(t *testing.T) {
	err := fmt.Errorf("create session: %w",
		domainerrors.FieldValidation("pagesRead", "pages read cannot exceed total pages").
			WithDetails(map[string]string{"pagesRead": "too many"}))

	statusErr := newAPIError(http.StatusInternalServerError, "unexpected error occurred", err)

	apiErr, ok := statusErr.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, "pages_read", apiErr.Field)
	assert.Equal(t, map[string]string{"pages_read": "too many"}, apiErr.Details)
}

func TestNewAPIError_NotFound(t *testing.T) {
	statusErr := newAPIError(http.StatusInternalServerError, "", domainerrors.ResourceNotFound("category", "categoryId"))

	apiErr := statusErr.(*APIError)
	assert.Equal(t, http.StatusNotFound, apiErr.GetStatus())
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "category", apiErr.Resource)
	assert.Equal(t, "category_id", apiErr.Field)
}

func TestNewAPIError_SchemaErrors(t *testing.T) {
	statusErr := newAPIError(http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "body", Message: "expected required property minutes to be present"},
		&huma.ErrorDetail{Location: "body.pages_read", Message: "expected integer"},
	)

	apiErr := statusErr.(*APIError)
	assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, "minutes", apiErr.Field)
	assert.Equal(t, map[string]string{
		"minutes":    "expected required property minutes to be present",
		"pages_read": "expected integer",
	}, apiErr.Details)
}

func TestNewAPIError_InternalHidesMessage(t *testing.T) {
	statusErr := newAPIError(http.StatusInternalServerError, "disk on fire", errors.New("boom"))

	apiErr := statusErr.(*APIError)
	assert.Equal(t, http.StatusInternalServerError, apiErr.GetStatus())
	assert.Equal(t, "INTERNAL", apiErr.Code)
	assert.Equal(t, "internal server error", apiErr.Message)
}

func TestStatusToCode(t *testing.T) {
	assert.Equal(t, "VALIDATION", statusToCode(http.StatusUnprocessableEntity))
	assert.Equal(t, "UNAUTHORIZED", statusToCode(http.StatusUnauthorized))
	assert.Equal(t, "CONCURRENCY_CONFLICT", statusToCode(http.StatusConflict))
	assert.Equal(t, "RATE_LIMITED", statusToCode(http.StatusTooManyRequests))
	assert.Equal(t, "INTERNAL", statusToCode(http.StatusTeapot))
}

func TestEnvelopeTransformer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		out, err := EnvelopeTransformer(nil, "200", map[string]int{"n": 1})
		require.NoError(t, err)

		env := out.(*Envelope)
		assert.True(t, env.Success)
		assert.Equal(t, envelopeVersion, env.Version)
		assert.Equal(t, map[string]int{"n": 1}, env.Data)
	})

	t.Run("failure", func(t *testing.T) {
		apiErr := &APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "book not found", Resource: "book", Field: "book_id"}

		out, err := EnvelopeTransformer(nil, "404", apiErr)
		require.NoError(t, err)

		env := out.(*Envelope)
		assert.False(t, env.Success)
		assert.Nil(t, env.Data)
		assert.Equal(t, "NOT_FOUND", env.Code)
		assert.Equal(t, "book not found", env.Error)
		assert.Equal(t, "book", env.Resource)
		assert.Equal(t, "book_id", env.Field)
	})
}
