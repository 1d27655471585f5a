package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/validation"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"displayName" validate:"notblank,runemax=5"`
}

type sessionRequest struct {
	Minutes   int `json:"minutes" validate:"gt=0"`
	PagesRead int `json:"pagesRead" validate:"gt=0"`
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerRequest{Email: "a@example.com", Password: "password123", Name: "Ann"})
	assert.NoError(t, err)
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       any
		wantField string
	}{
		{"invalid email", registerRequest{Email: "nope", Password: "password123", Name: "Ann"}, "email"},
		{"short password", registerRequest{Email: "a@example.com", Password: "short", Name: "Ann"}, "password"},
		{"blank name", registerRequest{Email: "a@example.com", Password: "password123", Name: "   "}, "displayName"},
		{"long name", registerRequest{Email: "a@example.com", Password: "password123", Name: "\u00e9\u00e9\u00e9\u00e9\u00e9\u00e9"}, "displayName"},
		{"zero minutes", sessionRequest{Minutes: 0, PagesRead: 1}, "minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantField, domainErr.Field)
			assert.Equal(t, 400, domainErr.HTTPStatus())
		})
	}
}

func TestValidator_FirstFieldWins(t *testing.T) {
	v := validation.New()

	err := v.Validate(sessionRequest{})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)

	assert.Equal(t, "minutes", domainErr.Field)
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Len(t, details, 2)
	assert.Equal(t, "must be greater than 0", details["pagesRead"])
}

func TestValidator_RuneMaxCountsCodePoints(t *testing.T) {
	v := validation.New()

	// Five characters after composition, one of them written decomposed.
	err := v.Validate(registerRequest{Email: "a@example.com", Password: "password123", Name: "e\u0301\u00e9\u00e9\u00e9\u00e9"})
	assert.NoError(t, err)
}
