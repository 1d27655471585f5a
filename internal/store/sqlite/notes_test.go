package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/store"
)

func TestNotes_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := seedBook(t, s, "user-1", "book-1", 100)

	note, err := domain.NewNote("note-1", book, "first impressions")
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}
	if err := s.CreateNote(ctx, note); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	if err := note.UpdateContent("second thoughts"); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if err := s.UpdateNote(ctx, note); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	got, err := s.GetNoteForUser(ctx, "note-1", "book-1", "user-1")
	if err != nil {
		t.Fatalf("GetNoteForUser: %v", err)
	}
	if got.Content != "second thoughts" {
		t.Errorf("Content: got %q", got.Content)
	}

	if _, err := s.GetNoteForUser(ctx, "note-1", "book-1", "user-2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}

	list, err := s.ListNotes(ctx, "book-1", "user-1", store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("Total: got %d, want 1", list.Total)
	}

	n, err := s.DeleteNote(ctx, "note-1", "user-1", "book-1")
	if err != nil || n != 1 {
		t.Fatalf("DeleteNote: n=%d err=%v", n, err)
	}
	if err := s.UpdateNote(ctx, note); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update after delete: expected ErrNotFound, got %v", err)
	}
}
