package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

func TestCreateAndGetReadingSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := seedBook(t, s, "user-1", "book-1", 300)

	date := time.Date(2026, 5, 1, 21, 30, 0, 0, time.UTC)
	session, err := domain.NewReadingSession("rs-1", book, 40, 22, date)
	if err != nil {
		t.Fatalf("NewReadingSession: %v", err)
	}
	if err := s.CreateReadingSession(ctx, session); err != nil {
		t.Fatalf("CreateReadingSession: %v", err)
	}

	got, err := s.GetReadingSessionForUser(ctx, "rs-1", "book-1", "user-1")
	if err != nil {
		t.Fatalf("GetReadingSessionForUser: %v", err)
	}
	if got.Minutes != 40 || got.PagesRead != 22 {
		t.Errorf("values: got %d min / %d pages, want 40 / 22", got.Minutes, got.PagesRead)
	}
	if !got.SessionDate.Equal(date) {
		t.Errorf("SessionDate: got %v, want %v", got.SessionDate, date)
	}
	if got.UserID != "user-1" || got.BookID != "book-1" {
		t.Errorf("ownership: got %s/%s", got.UserID, got.BookID)
	}

	if err := s.CreateReadingSession(ctx, session); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate: expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetReadingSessionForUser_Scoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := seedBook(t, s, "user-1", "book-1", 300)
	insertTestBook(t, s, "book-2", "user-1", "cat-user-1", 50, 0)

	session, _ := domain.NewReadingSession("rs-1", book, 10, 10, time.Now())
	if err := s.CreateReadingSession(ctx, session); err != nil {
		t.Fatalf("CreateReadingSession: %v", err)
	}

	tests := []struct {
		name                      string
		sessionID, bookID, userID string
	}{
		{"wrong user", "rs-1", "book-1", "user-2"},
		{"wrong book", "rs-1", "book-2", "user-1"},
		{"missing session", "rs-2", "book-1", "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.GetReadingSessionForUser(ctx, tt.sessionID, tt.bookID, tt.userID)
			if !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestUpdateReadingSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := seedBook(t, s, "user-1", "book-1", 300)

	original, _ := domain.NewReadingSession("rs-1", book, 10, 10, time.Now().Add(-time.Hour))
	if err := s.CreateReadingSession(ctx, original); err != nil {
		t.Fatalf("CreateReadingSession: %v", err)
	}

	replaced, err := original.Replace(25, 15, time.Now())
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := s.UpdateReadingSession(ctx, replaced); err != nil {
		t.Fatalf("UpdateReadingSession: %v", err)
	}

	got, _ := s.GetReadingSessionForUser(ctx, "rs-1", "book-1", "user-1")
	if got.Minutes != 25 || got.PagesRead != 15 {
		t.Errorf("got %d min / %d pages, want 25 / 15", got.Minutes, got.PagesRead)
	}

	replaced.ID = "rs-missing"
	if err := s.UpdateReadingSession(ctx, replaced); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListReadingSessions_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := seedBook(t, s, "user-1", "book-1", 300)

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"rs-a", "rs-b", "rs-c"} {
		rs, _ := domain.NewReadingSession(id, book, 10, 1, base.Add(time.Duration(i)*time.Hour))
		if err := s.CreateReadingSession(ctx, rs); err != nil {
			t.Fatalf("CreateReadingSession: %v", err)
		}
	}

	result, err := s.ListReadingSessions(ctx, "book-1", "user-1", store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListReadingSessions: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(result.Items))
	}
	if result.Items[0].ID != "rs-c" || result.Items[2].ID != "rs-a" {
		t.Errorf("order: got %s..%s, want rs-c..rs-a", result.Items[0].ID, result.Items[2].ID)
	}

	other, err := s.ListReadingSessions(ctx, "book-1", "user-2", store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListReadingSessions: %v", err)
	}
	if len(other.Items) != 0 {
		t.Errorf("other user sees %d sessions", len(other.Items))
	}
}

func TestDeleteReadingSession_AffectedRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := seedBook(t, s, "user-1", "book-1", 300)

	rs, _ := domain.NewReadingSession("rs-1", book, 10, 10, time.Now())
	if err := s.CreateReadingSession(ctx, rs); err != nil {
		t.Fatalf("CreateReadingSession: %v", err)
	}

	n, err := s.DeleteReadingSession(ctx, "rs-1", "user-2", "book-1")
	if err != nil || n != 0 {
		t.Errorf("wrong owner: n=%d err=%v", n, err)
	}

	n, err = s.DeleteReadingSession(ctx, "rs-1", "user-1", "book-1")
	if err != nil || n != 1 {
		t.Errorf("first delete: n=%d err=%v", n, err)
	}

	n, err = s.DeleteReadingSession(ctx, "rs-1", "user-1", "book-1")
	if err != nil || n != 0 {
		t.Errorf("second delete: n=%d err=%v", n, err)
	}
}
