package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded chain uses first hop",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			remoteAddr: "10.0.0.1:5000",
			want:       "203.0.113.7",
		},
		{
			name:       "real ip header",
			headers:    map[string]string{"X-Real-IP": " 198.51.100.4 "},
			remoteAddr: "10.0.0.1:5000",
			want:       "198.51.100.4",
		},
		{
			name:       "remote addr",
			remoteAddr: "192.0.2.10:41234",
			want:       "192.0.2.10",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.10",
			want:       "192.0.2.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestPathPrefix(t *testing.T) {
	var wrapped int
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped++
			next.ServeHTTP(w, r)
		})
	}
	h := pathPrefix("/api/v1/auth/", mw)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/books", "/health"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 1, wrapped)
}

func TestGetUserID(t *testing.T) {
	_, err := GetUserID(context.Background())
	require.Error(t, err)

	userID, err := GetUserID(setUserID(context.Background(), "usr_123"))
	require.NoError(t, err)
	assert.Equal(t, "usr_123", userID)
}

func TestGetUserID_ReportsRejectedToken(t *testing.T) {
	tests := []struct {
		name     string
		tokenErr error
		want     domainerrors.Code
	}{
		{"expired token", domainerrors.TokenExpired("access token expired"), domainerrors.CodeTokenExpired},
		{"invalid token", domainerrors.Unauthorized("invalid access token"), domainerrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.WithValue(context.Background(), authErrorKey, tt.tokenErr)

			_, err := GetUserID(ctx)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.want, domainErr.Code)
		})
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Content-Type"))
}
