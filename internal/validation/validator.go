// Package validation validates request structs with go-playground/validator
// and reports failures as domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/normalize"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that names fields by their json tag and knows the
// "notblank" and "runemax" tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// notblank rejects strings that are empty after normalization.
	//nolint:errcheck // registration only fails on empty tag names
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return !normalize.IsBlank(fl.Field().String())
	})

	// runemax bounds the normalized length in code points.
	//nolint:errcheck // registration only fails on empty tag names
	_ = v.RegisterValidation("runemax", func(fl validator.FieldLevel) bool {
		limit := fl.Param()
		var n int
		if _, err := fmt.Sscanf(limit, "%d", &n); err != nil {
			return false
		}
		return normalize.Length(fl.Field().String()) <= n
	})

	return &Validator{v: v}
}

// Validate validates a struct. On failure it returns a *errors.Error with
// code VALIDATION whose Field is the first failing field in declaration
// order and whose Details map every failing field to a message.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	first := validationErrs[0]
	return domainerrors.FieldValidation(first.Field(), first.Field()+" "+friendlyMessage(first)).
		WithDetails(fieldErrors)
}

//nolint:gocyclo // exhaustive over supported tags
func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max", "runemax":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	default:
		return "is invalid"
	}
}
