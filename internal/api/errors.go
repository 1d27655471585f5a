package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status   int
	Code     string `json:"code" doc:"Machine-readable error code"`
	Message  string `json:"message" doc:"Human-readable error message"`
	Field    string `json:"field,omitempty" doc:"Input field that failed validation, or the identifier that was looked up"`
	Resource string `json:"resource,omitempty" doc:"Kind of entity that was not found"`
	Details  any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = newAPIError
}

func newAPIError(status int, message string, errs ...error) huma.StatusError {
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return &APIError{
				status:   domainErr.HTTPStatus(),
				Code:     string(domainErr.Code),
				Message:  domainErr.Message,
				Field:    wireField(domainErr.Field),
				Resource: domainErr.Resource,
				Details:  wireDetails(domainErr.Details),
			}
		}
	}

	// Request decoding and schema failures arrive as ErrorDetail values.
	// They are reported like any other validation error.
	if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
		if apiErr := schemaError(message, errs); apiErr != nil {
			return apiErr
		}
	}

	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	return &APIError{
		status:  status,
		Code:    statusToCode(status),
		Message: message,
	}
}

// schemaError converts huma's request validation details into a
// VALIDATION error naming the first offending field.
func schemaError(message string, errs []error) *APIError {
	var (
		field   string
		details = make(map[string]string)
	)
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		name := schemaField(detail)
		if field == "" {
			field = name
			message = detail.Message
		}
		details[name] = detail.Message
	}
	if field == "" {
		return nil
	}

	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    string(domainerrors.CodeValidation),
		Message: message,
		Field:   field,
	}
	if len(details) > 1 {
		apiErr.Details = details
	}
	return apiErr
}

// schemaField names the input a schema problem is about. Missing required
// properties are reported against their parent, so the name is taken from
// the message instead.
func schemaField(detail *huma.ErrorDetail) string {
	name := detail.Location
	if prop, ok := strings.CutPrefix(detail.Message, "expected required property "); ok {
		if prop, ok = strings.CutSuffix(prop, " to be present"); ok {
			name = prop
		}
	}
	for _, prefix := range []string{"body.", "query.", "path.", "header."} {
		name = strings.TrimPrefix(name, prefix)
	}
	return name
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConcurrencyConflict)
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return string(domainerrors.CodeInternal)
	}
}

// wireField converts a domain field name (pagesRead) to the snake_case key
// used on the wire (pages_read).
func wireField(field string) string {
	if field == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(field) + 4)
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func wireDetails(details any) any {
	fields, ok := details.(map[string]string)
	if !ok {
		return details
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[wireField(k)] = v
	}
	return out
}

// register is huma.Register with domain error translation. Handlers return
// domain errors as-is; they reach huma as StatusErrors carrying the right
// status code. Unexpected errors are logged and reported as INTERNAL.
func register[I, O any](s *Server, op huma.Operation, handler func(context.Context, *I) (*O, error)) {
	huma.Register(s.api, op, func(ctx context.Context, input *I) (*O, error) {
		out, err := handler(ctx, input)
		if err == nil {
			return out, nil
		}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			return nil, statusErr
		}

		apiErr := newAPIError(http.StatusInternalServerError, "unexpected error occurred", err)
		if apiErr.GetStatus() >= http.StatusInternalServerError {
			s.logger.Error("Request failed", "operation", op.OperationID, "error", err)
		}
		return nil, apiErr
	})
}
