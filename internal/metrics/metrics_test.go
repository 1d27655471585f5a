package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{domainerrors.FieldValidation("pagesRead", "too many"), OutcomeValidation},
		{fmt.Errorf("wrapped: %w", domainerrors.ResourceNotFound("book", "bookId")), OutcomeNotFound},
		{domainerrors.ConcurrencyConflict("session already deleted"), OutcomeConflict},
		{errors.New("disk full"), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestObserve(t *testing.T) {
	m := New()

	m.Observe("create_session", time.Now(), nil)
	m.Observe("create_session", time.Now(), nil)
	m.Observe("create_session", time.Now(), domainerrors.FieldValidation("pagesRead", "bad"))

	assert.Equal(t, 2.0, m.OperationCount("create_session", OutcomeOK))
	assert.Equal(t, 1.0, m.OperationCount("create_session", OutcomeValidation))
	assert.Equal(t, 0.0, m.OperationCount("delete_session", OutcomeOK))
}

func TestObserve_NilReceiver(t *testing.T) {
	var m *Metrics
	m.Observe("create_session", time.Now(), nil)
	m.AddPagesRead(10)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.Observe("delete_session", time.Now(), domainerrors.ConcurrencyConflict("gone"))
	m.AddPagesRead(25)

	handler := m.Middleware(m.Handler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `pagemark_service_operations_total{operation="delete_session",outcome="conflict"} 1`)
	assert.Contains(t, string(body), "pagemark_reading_pages_logged_total 25")
	assert.Contains(t, string(body), "go_goroutines")
}
