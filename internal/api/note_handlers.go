package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagemark/pagemark-server/internal/domain"
)

func (s *Server) registerNoteRoutes() {
	register(s, huma.Operation{
		OperationID:   "createNote",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{bookId}/notes",
		Summary:       "Create note",
		Description:   "Attaches a note of at most 255 characters to a book",
		Tags:          []string{"Notes"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateNote)

	register(s, huma.Operation{
		OperationID: "listNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookId}/notes",
		Summary:     "List notes",
		Description: "Returns a page of the book's notes, newest first",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNotes)

	register(s, huma.Operation{
		OperationID: "updateNote",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{bookId}/notes/{noteId}",
		Summary:     "Update note",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateNote)

	register(s, huma.Operation{
		OperationID:   "deleteNote",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{bookId}/notes/{noteId}",
		Summary:       "Delete note",
		Tags:          []string{"Notes"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteNote)
}

// NoteRequest is the request body for creating or editing a note.
type NoteRequest struct {
	Content string `json:"content" doc:"Note text, 1 to 255 characters"`
}

// CreateNoteInput wraps the create note request for Huma.
type CreateNoteInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	Body   NoteRequest
}

// UpdateNoteInput wraps the update note request for Huma.
type UpdateNoteInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	NoteID string `path:"noteId" doc:"Note ID"`
	Body   NoteRequest
}

// NoteIDInput identifies a note by path parameters.
type NoteIDInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	NoteID string `path:"noteId" doc:"Note ID"`
}

// ListNotesInput holds the note listing parameters.
type ListNotesInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	PageQuery
}

// NoteResponse contains note data in API responses.
type NoteResponse struct {
	ID        string    `json:"id" doc:"Note ID"`
	BookID    string    `json:"book_id" doc:"Book ID"`
	Content   string    `json:"content" doc:"Note text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last edit timestamp"`
}

// NoteOutput wraps a single note for Huma.
type NoteOutput struct {
	Body NoteResponse
}

// ListNotesResponse contains a page of notes.
type ListNotesResponse struct {
	Notes []NoteResponse `json:"notes" doc:"Notes on this page"`
	PageInfo
}

// ListNotesOutput wraps the note list for Huma.
type ListNotesOutput struct {
	Body ListNotesResponse
}

func (s *Server) handleCreateNote(ctx context.Context, input *CreateNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.CreateNote(ctx, input.BookID, userID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: mapNoteResponse(note)}, nil
}

func (s *Server) handleListNotes(ctx context.Context, input *ListNotesInput) (*ListNotesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Note.ListNotes(ctx, input.BookID, userID, input.params())
	if err != nil {
		return nil, err
	}
	return &ListNotesOutput{
		Body: ListNotesResponse{
			Notes:    mapItems(page.Items, mapNoteResponse),
			PageInfo: pageInfo(page),
		},
	}, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, input *UpdateNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.UpdateNote(ctx, input.BookID, input.NoteID, userID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: mapNoteResponse(note)}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *NoteIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Note.DeleteNote(ctx, input.BookID, input.NoteID, userID); err != nil {
		return nil, err
	}
	return nil, nil
}

func mapNoteResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		BookID:    n.BookID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
