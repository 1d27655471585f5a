package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/store"
)

func TestAuthService_RegisterLoginVerify(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		svc := newTestAuthService(t, st)
		ctx := context.Background()

		registered, err := svc.Register(ctx, RegisterRequest{
			Email:       "Reader@Example.com ",
			Password:    "correct horse",
			DisplayName: "Reader",
		})
		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", registered.User.Email)
		assert.NotEmpty(t, registered.AccessToken)
		assert.NotEqual(t, "correct horse", registered.User.PasswordHash)

		loggedIn, err := svc.Login(ctx, LoginRequest{Email: "READER@example.com", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, loggedIn.User.ID)

		user, err := svc.VerifyAccessToken(ctx, loggedIn.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, user.ID)
		assert.False(t, user.LastLoginAt.IsZero())
	})
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	st := openSQLite(t)
	svc := newTestAuthService(t, st)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "dup@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "DUP@example.com", Password: "password2"})
	requireDomainError(t, err, domainerrors.CodeAlreadyExists)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	st := openSQLite(t)
	svc := newTestAuthService(t, st)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "not-an-email", Password: "password1"})
	domainErr := requireDomainError(t, err, domainerrors.CodeValidation)
	assert.Equal(t, "email", domainErr.Field)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "a@example.com", Password: "short"})
	domainErr = requireDomainError(t, err, domainerrors.CodeValidation)
	assert.Equal(t, "password", domainErr.Field)
}

func TestAuthService_LoginFailures(t *testing.T) {
	st := openSQLite(t)
	svc := newTestAuthService(t, st)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "wrong-password"})
	requireDomainError(t, err, domainerrors.CodeInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password1"})
	requireDomainError(t, err, domainerrors.CodeInvalidCredentials)
}

func TestAuthService_VerifyRejectsGarbage(t *testing.T) {
	st := openSQLite(t)
	svc := newTestAuthService(t, st)

	_, err := svc.VerifyAccessToken(context.Background(), "v4.local.garbage")
	requireDomainError(t, err, domainerrors.CodeUnauthorized)
}

func TestAuthService_VerifyExpiredToken(t *testing.T) {
	st := openSQLite(t)
	svc := newTestAuthServiceWithTTL(t, st, time.Nanosecond)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterRequest{Email: "late@example.com", Password: "correct horse battery"})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(ctx, res.AccessToken)
	requireDomainError(t, err, domainerrors.CodeTokenExpired)
}
