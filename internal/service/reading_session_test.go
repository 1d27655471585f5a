package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/metrics"
	"github.com/pagemark/pagemark-server/internal/store"
)

func requireDomainError(t *testing.T, err error, code domainerrors.Code) *domainerrors.Error {
	t.Helper()
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code, "error: %v", err)
	return domainErr
}

func TestCreateSession_UpdatesBook(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		ctx := context.Background()
		book := seedBook(t, st, "user-1", "book-1", 100, 0)

		result, err := env.sessions.CreateSession(ctx, CreateSessionRequest{
			BookID:    book.ID,
			UserID:    "user-1",
			Minutes:   20,
			PagesRead: 20,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, result.ID)
		assert.Equal(t, book.ID, result.BookID)
		assert.Equal(t, 20, result.PagesRead)
		assert.Equal(t, 20, result.Minutes)
		assert.Equal(t, 20, result.BookPagesRead)
		assert.Equal(t, 20, result.Progress)
		assert.False(t, result.Finished)
		assert.Equal(t, 20, pagesReadOf(t, st, book.ID, "user-1"))

		stored, err := env.sessions.GetSession(ctx, book.ID, "user-1", result.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, stored.PagesRead)
		assert.Equal(t, 1.0, env.metrics.OperationCount(opCreateSession, metrics.OutcomeOK))
	})
}

func TestCreateSession_ExceedsTotalPages(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		book := seedBook(t, st, "user-1", "book-1", 100, 90)

		_, err := env.sessions.CreateSession(context.Background(), CreateSessionRequest{
			BookID: book.ID, UserID: "user-1", Minutes: 10, PagesRead: 11,
		})

		domainErr := requireDomainError(t, err, domainerrors.CodeValidation)
		assert.Equal(t, "pagesRead", domainErr.Field)
		assert.Equal(t, 90, pagesReadOf(t, st, book.ID, "user-1"))

		page, err := st.ListReadingSessions(context.Background(), book.ID, "user-1", store.DefaultPaginationParams())
		require.NoError(t, err)
		assert.Empty(t, page.Items, "rejected session must not be persisted")
	})
}

func TestCreateSession_Validation(t *testing.T) {
	tests := []struct {
		name      string
		minutes   int
		pagesRead int
		wantField string
	}{
		{"zero minutes", 0, 10, "minutes"},
		{"negative minutes", -5, 10, "minutes"},
		{"zero pages", 10, 0, "pagesRead"},
		{"both invalid reports minutes", 0, 0, "minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := openSQLite(t)
			env := newTestEnv(t, st)
			book := seedBook(t, st, "user-1", "book-1", 100, 0)

			_, err := env.sessions.CreateSession(context.Background(), CreateSessionRequest{
				BookID: book.ID, UserID: "user-1", Minutes: tt.minutes, PagesRead: tt.pagesRead,
			})

			domainErr := requireDomainError(t, err, domainerrors.CodeValidation)
			assert.Equal(t, tt.wantField, domainErr.Field)
			assert.Equal(t, 0, pagesReadOf(t, st, book.ID, "user-1"))
		})
	}
}

func TestCreateSession_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		book := seedBook(t, st, "user-1", "book-1", 100, 0)
		seedUser(t, st, "user-2")

		// Another user's book is indistinguishable from a missing one.
		for _, req := range []CreateSessionRequest{
			{BookID: "book-missing", UserID: "user-1", Minutes: 5, PagesRead: 5},
			{BookID: book.ID, UserID: "user-2", Minutes: 5, PagesRead: 5},
		} {
			_, err := env.sessions.CreateSession(context.Background(), req)
			domainErr := requireDomainError(t, err, domainerrors.CodeNotFound)
			assert.Equal(t, "book", domainErr.Resource)
			assert.Equal(t, "bookId", domainErr.Field)
		}
		assert.Equal(t, 2.0, env.metrics.OperationCount(opCreateSession, metrics.OutcomeNotFound))
	})
}

func TestCreateSession_UsesRequestedDate(t *testing.T) {
	st := openSQLite(t)
	env := newTestEnv(t, st)
	book := seedBook(t, st, "user-1", "book-1", 100, 0)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	result, err := env.sessions.CreateSession(context.Background(), CreateSessionRequest{
		BookID: book.ID, UserID: "user-1", Minutes: 5, PagesRead: 5, SessionDate: date,
	})
	require.NoError(t, err)
	assert.True(t, result.SessionDate.Equal(date))
}

func TestSessionDate_DefaultsToNow(t *testing.T) {
	st := openSQLite(t)
	env := newTestEnv(t, st)
	ctx := context.Background()
	book := seedBook(t, st, "user-1", "book-1", 100, 0)

	created := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	env.sessions.now = func() time.Time { return created }
	result, err := env.sessions.CreateSession(ctx, CreateSessionRequest{
		BookID: book.ID, UserID: "user-1", Minutes: 5, PagesRead: 5,
	})
	require.NoError(t, err)
	assert.True(t, result.SessionDate.Equal(created))

	// An edit without a date moves the session to the time of the edit.
	edited := created.Add(24 * time.Hour)
	env.sessions.now = func() time.Time { return edited }
	result, err = env.sessions.UpdateSession(ctx, UpdateSessionRequest{
		BookID: book.ID, UserID: "user-1", SessionID: result.ID, Minutes: 10, PagesRead: 8,
	})
	require.NoError(t, err)
	assert.True(t, result.SessionDate.Equal(edited))
	assert.Equal(t, 8, pagesReadOf(t, st, book.ID, "user-1"))
}

func TestUpdateSession_AppliesDifference(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		ctx := context.Background()

		// pagesRead 50 already includes the 10-page session.
		book := seedBook(t, st, "user-1", "book-1", 100, 50)
		session := seedSession(t, st, book, "rsession-1", 10)

		result, err := env.sessions.UpdateSession(ctx, UpdateSessionRequest{
			BookID:    book.ID,
			UserID:    "user-1",
			SessionID: session.ID,
			Minutes:   30,
			PagesRead: 15,
		})
		require.NoError(t, err)

		assert.Equal(t, session.ID, result.ID)
		assert.Equal(t, 15, result.PagesRead)
		assert.Equal(t, 30, result.Minutes)
		assert.Equal(t, 55, result.BookPagesRead)
		assert.Equal(t, 55, pagesReadOf(t, st, book.ID, "user-1"))

		stored, err := st.GetReadingSessionForUser(ctx, session.ID, book.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 15, stored.PagesRead)
		assert.Equal(t, 30, stored.Minutes)
	})
}

func TestUpdateSession_ShrinkingSession(t *testing.T) {
	st := openSQLite(t)
	env := newTestEnv(t, st)
	book := seedBook(t, st, "user-1", "book-1", 100, 40)
	session := seedSession(t, st, book, "rsession-1", 40)

	result, err := env.sessions.UpdateSession(context.Background(), UpdateSessionRequest{
		BookID: book.ID, UserID: "user-1", SessionID: session.ID, Minutes: 10, PagesRead: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.BookPagesRead)
}

func TestUpdateSession_RejectedChangePersistsNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		ctx := context.Background()
		book := seedBook(t, st, "user-1", "book-1", 100, 95)
		session := seedSession(t, st, book, "rsession-1", 10)

		// 95 - 10 + 20 = 105 > 100.
		_, err := env.sessions.UpdateSession(ctx, UpdateSessionRequest{
			BookID: book.ID, UserID: "user-1", SessionID: session.ID, Minutes: 10, PagesRead: 20,
		})

		domainErr := requireDomainError(t, err, domainerrors.CodeValidation)
		assert.Equal(t, "pagesRead", domainErr.Field)
		assert.Equal(t, 95, pagesReadOf(t, st, book.ID, "user-1"), "the reversal must not be persisted")

		stored, err := st.GetReadingSessionForUser(ctx, session.ID, book.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 10, stored.PagesRead)
	})
}

func TestUpdateSession_InvalidValues(t *testing.T) {
	st := openSQLite(t)
	env := newTestEnv(t, st)
	book := seedBook(t, st, "user-1", "book-1", 100, 10)
	session := seedSession(t, st, book, "rsession-1", 10)

	_, err := env.sessions.UpdateSession(context.Background(), UpdateSessionRequest{
		BookID: book.ID, UserID: "user-1", SessionID: session.ID, Minutes: 0, PagesRead: 5,
	})

	domainErr := requireDomainError(t, err, domainerrors.CodeValidation)
	assert.Equal(t, "minutes", domainErr.Field)
	assert.Equal(t, 10, pagesReadOf(t, st, book.ID, "user-1"))
}

func TestUpdateSession_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		ctx := context.Background()
		book := seedBook(t, st, "user-1", "book-1", 100, 10)
		session := seedSession(t, st, book, "rsession-1", 10)
		other := seedBook(t, st, "user-2", "book-2", 100, 0)

		_, err := env.sessions.UpdateSession(ctx, UpdateSessionRequest{
			BookID: book.ID, UserID: "user-1", SessionID: "rsession-missing", Minutes: 5, PagesRead: 5,
		})
		domainErr := requireDomainError(t, err, domainerrors.CodeNotFound)
		assert.Equal(t, "readingSession", domainErr.Resource)
		assert.Equal(t, "sessionId", domainErr.Field)

		// The session exists but is addressed through another user's book.
		_, err = env.sessions.UpdateSession(ctx, UpdateSessionRequest{
			BookID: other.ID, UserID: "user-2", SessionID: session.ID, Minutes: 5, PagesRead: 5,
		})
		domainErr = requireDomainError(t, err, domainerrors.CodeNotFound)
		assert.Equal(t, "readingSession", domainErr.Resource)

		_, err = env.sessions.UpdateSession(ctx, UpdateSessionRequest{
			BookID: book.ID, UserID: "user-2", SessionID: session.ID, Minutes: 5, PagesRead: 5,
		})
		domainErr = requireDomainError(t, err, domainerrors.CodeNotFound)
		assert.Equal(t, "book", domainErr.Resource)
	})
}

func TestDeleteSession_RestoresBook(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		ctx := context.Background()
		book := seedBook(t, st, "user-1", "book-1", 100, 30)
		session := seedSession(t, st, book, "rsession-1", 12)

		require.NoError(t, env.sessions.DeleteSession(ctx, book.ID, "user-1", session.ID))

		assert.Equal(t, 18, pagesReadOf(t, st, book.ID, "user-1"))
		_, err := env.sessions.GetSession(ctx, book.ID, "user-1", session.ID)
		requireDomainError(t, err, domainerrors.CodeNotFound)
	})
}

func TestDeleteSession_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		book := seedBook(t, st, "user-1", "book-1", 100, 30)

		err := env.sessions.DeleteSession(context.Background(), book.ID, "user-1", "rsession-missing")
		domainErr := requireDomainError(t, err, domainerrors.CodeNotFound)
		assert.Equal(t, "readingSession", domainErr.Resource)
		assert.Equal(t, "sessionId", domainErr.Field)
		assert.Equal(t, 30, pagesReadOf(t, st, book.ID, "user-1"))
	})
}

// lostDeleteStore reports that every session delete matched nothing, as if
// another request removed the session between lookup and delete.
type lostDeleteStore struct {
	store.Store
}

func (s lostDeleteStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(lostDeleteTx{Tx: tx})
	})
}

type lostDeleteTx struct {
	store.Tx
}

func (lostDeleteTx) DeleteReadingSession(context.Context, string, string, string) (int64, error) {
	return 0, nil
}

func TestDeleteSession_LostRaceIsConflict(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, lostDeleteStore{Store: st})
		ctx := context.Background()
		book := seedBook(t, st, "user-1", "book-1", 100, 40)
		session := seedSession(t, st, book, "rsession-1", 25)

		err := env.sessions.DeleteSession(ctx, book.ID, "user-1", session.ID)

		requireDomainError(t, err, domainerrors.CodeConcurrencyConflict)
		assert.ErrorIs(t, err, domainerrors.ErrConcurrencyConflict)
		assert.Equal(t, 40, pagesReadOf(t, st, book.ID, "user-1"), "book must not be decremented")
		assert.Equal(t, 1.0, env.metrics.OperationCount(opDeleteSession, metrics.OutcomeConflict))
	})
}

func TestCreateThenDelete_RoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		ctx := context.Background()
		book := seedBook(t, st, "user-1", "book-1", 300, 120)

		result, err := env.sessions.CreateSession(ctx, CreateSessionRequest{
			BookID: book.ID, UserID: "user-1", Minutes: 45, PagesRead: 33,
		})
		require.NoError(t, err)
		assert.Equal(t, 153, result.BookPagesRead)

		require.NoError(t, env.sessions.DeleteSession(ctx, book.ID, "user-1", result.ID))
		assert.Equal(t, 120, pagesReadOf(t, st, book.ID, "user-1"))
	})
}

func TestSessions_PagesReadMatchesSessionSum(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		env := newTestEnv(t, st)
		ctx := context.Background()
		book := seedBook(t, st, "user-1", "book-1", 200, 0)

		var ids []string
		for _, pages := range []int{10, 25, 40} {
			r, err := env.sessions.CreateSession(ctx, CreateSessionRequest{
				BookID: book.ID, UserID: "user-1", Minutes: 15, PagesRead: pages,
			})
			require.NoError(t, err)
			ids = append(ids, r.ID)
		}

		_, err := env.sessions.UpdateSession(ctx, UpdateSessionRequest{
			BookID: book.ID, UserID: "user-1", SessionID: ids[1], Minutes: 15, PagesRead: 5,
		})
		require.NoError(t, err)
		require.NoError(t, env.sessions.DeleteSession(ctx, book.ID, "user-1", ids[0]))

		page, err := env.sessions.ListSessions(ctx, book.ID, "user-1", store.DefaultPaginationParams())
		require.NoError(t, err)

		sum := 0
		for _, s := range page.Items {
			sum += s.PagesRead
		}
		assert.Equal(t, 45, sum)
		assert.Equal(t, sum, pagesReadOf(t, st, book.ID, "user-1"))
	})
}

func TestCreateSession_FinishesBook(t *testing.T) {
	st := openSQLite(t)
	env := newTestEnv(t, st)
	book := seedBook(t, st, "user-1", "book-1", 100, 90)

	result, err := env.sessions.CreateSession(context.Background(), CreateSessionRequest{
		BookID: book.ID, UserID: "user-1", Minutes: 10, PagesRead: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Progress)
	assert.True(t, result.Finished)
}

func TestListSessions(t *testing.T) {
	st := openSQLite(t)
	env := newTestEnv(t, st)
	ctx := context.Background()
	book := seedBook(t, st, "user-1", "book-1", 100, 0)

	for i, day := range []int{1, 3, 2} {
		_, err := env.sessions.CreateSession(ctx, CreateSessionRequest{
			BookID: book.ID, UserID: "user-1", Minutes: 5, PagesRead: i + 1,
			SessionDate: time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	page, err := env.sessions.ListSessions(ctx, book.ID, "user-1", store.PaginationParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, 3, page.Items[0].SessionDate.Day(), "newest session date first")
	assert.Equal(t, 2, page.Items[1].SessionDate.Day())

	_, err = env.sessions.ListSessions(ctx, book.ID, "user-1", store.PaginationParams{Cursor: "!!"})
	domainErr := requireDomainError(t, err, domainerrors.CodeValidation)
	assert.Equal(t, "cursor", domainErr.Field)

	_, err = env.sessions.ListSessions(ctx, book.ID, "user-2", store.DefaultPaginationParams())
	requireDomainError(t, err, domainerrors.CodeNotFound)
}
